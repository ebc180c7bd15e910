package schema

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/dynq/internal/types"
)

// Document is a parsed schema file before its types are built.
// Declarations keep file order.
type Document struct {
	Enums []EnumDef
	Types []TypeDef
}

// EnumDef declares an enumeration. Underlying defaults to Int32.
type EnumDef struct {
	Name       string
	Underlying string
	Members    []types.EnumMember
	Pos        token.Pos
}

// TypeDef declares an object type with an optional base type.
type TypeDef struct {
	Name   string
	Base   string
	Fields []FieldDef
	Pos    token.Pos
}

// FieldDef is one field of a TypeDef. Type is a type expression such as
// "Int32", "String?" or "Order[]".
type FieldDef struct {
	Name string
	Type string
	Pos  token.Pos
}

// Row is the runtime value of a schema object type.
type Row = map[string]any

// Schema holds the types built from a Document.
type Schema struct {
	decls  []*types.Type
	byName map[string]*types.Type
}

// Types returns the declared enums and object types in declaration order,
// enums first.
func (s *Schema) Types() []*types.Type {
	return append([]*types.Type(nil), s.decls...)
}

// Lookup resolves a type expression against the schema and the predefined
// types. Names are matched ignoring case.
func (s *Schema) Lookup(name string) (*types.Type, error) {
	return parseTypeExpr(name, s.named)
}

func (s *Schema) named(name string) *types.Type {
	if t, ok := s.byName[types.FoldName(name)]; ok {
		return t
	}
	return predefined(name)
}

func predefined(name string) *types.Type {
	for _, p := range types.Predefined {
		if p.Kind() != types.Static && types.SameName(p.Name(), name) {
			return p
		}
	}
	return nil
}

// Build creates the types declared by doc. Field types may refer to types
// declared later in the document, and to themselves.
func Build(doc *Document) (*Schema, error) {
	s := &Schema{byName: map[string]*types.Type{}}

	declare := func(name string, pos token.Pos, t *types.Type) error {
		if name == "" {
			return &LoadError{Code: ErrCodeInvalidDocument, Message: "declaration name is required", Pos: pos}
		}
		key := types.FoldName(name)
		if _, dup := s.byName[key]; dup || predefined(name) != nil {
			return &LoadError{Code: ErrCodeDuplicateName, Message: fmt.Sprintf("type %s is already declared", name), Pos: pos}
		}
		s.byName[key] = t
		s.decls = append(s.decls, t)
		return nil
	}

	for _, e := range doc.Enums {
		underlying := types.Int32Type
		if e.Underlying != "" {
			underlying = predefined(e.Underlying)
			if underlying == nil || !underlying.Kind().IsIntegral() {
				return nil, &LoadError{Code: ErrCodeInvalidEnum, Message: fmt.Sprintf("enum %s: underlying type %s is not integral", e.Name, e.Underlying), Pos: e.Pos}
			}
		}
		if len(e.Members) == 0 {
			return nil, &LoadError{Code: ErrCodeInvalidEnum, Message: fmt.Sprintf("enum %s has no members", e.Name), Pos: e.Pos}
		}
		seen := map[string]bool{}
		for _, m := range e.Members {
			key := types.FoldName(m.Name)
			if seen[key] {
				return nil, &LoadError{Code: ErrCodeInvalidEnum, Message: fmt.Sprintf("enum %s: duplicate member %s", e.Name, m.Name), Pos: e.Pos}
			}
			seen[key] = true
		}
		if err := declare(e.Name, e.Pos, types.NewEnum(e.Name, underlying, e.Members...)); err != nil {
			return nil, err
		}
	}

	objects := make([]*types.Type, len(doc.Types))
	for i, td := range doc.Types {
		objects[i] = types.NewObject(td.Name)
		if err := declare(td.Name, td.Pos, objects[i]); err != nil {
			return nil, err
		}
	}

	for i, td := range doc.Types {
		var bases []*types.Type
		if td.Base != "" {
			base := s.byName[types.FoldName(td.Base)]
			if base == nil || base.Kind() != types.Object {
				return nil, &LoadError{Code: ErrCodeInvalidBase, Message: fmt.Sprintf("type %s: base %s is not a declared object type", td.Name, td.Base), Pos: td.Pos}
			}
			bases = append(bases, base)
		}
		members := make([]*types.Member, 0, len(td.Fields))
		seen := map[string]bool{}
		for _, f := range td.Fields {
			key := types.FoldName(f.Name)
			if f.Name == "" || seen[key] {
				return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: fmt.Sprintf("type %s: field name %q is empty or repeated", td.Name, f.Name), Pos: f.Pos}
			}
			seen[key] = true
			ft, err := s.Lookup(f.Type)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeUnknownType, Message: fmt.Sprintf("type %s: field %s: %v", td.Name, f.Name, err), Pos: f.Pos}
			}
			members = append(members, fieldMember(f.Name, ft))
		}
		objects[i].Bind(types.NewMemberSet(objects[i], members, bases...))
	}

	if err := checkBaseCycles(doc); err != nil {
		return nil, err
	}
	return s, nil
}

func checkBaseCycles(doc *Document) error {
	base := map[string]string{}
	for _, td := range doc.Types {
		if td.Base != "" {
			base[types.FoldName(td.Name)] = types.FoldName(td.Base)
		}
	}
	for _, td := range doc.Types {
		seen := map[string]bool{}
		for n := types.FoldName(td.Name); n != ""; n = base[n] {
			if seen[n] {
				return &LoadError{Code: ErrCodeBaseCycle, Message: fmt.Sprintf("type %s: base types form a cycle", td.Name), Pos: td.Pos}
			}
			seen[n] = true
		}
	}
	return nil
}

// fieldMember reads name from a Row. A row missing the key yields null.
func fieldMember(name string, ft *types.Type) *types.Member {
	return &types.Member{
		Name: name, Kind: types.Field, Type: ft,
		Get: func(target any) (any, error) {
			row, ok := target.(Row)
			if !ok {
				if target == nil {
					return nil, types.ErrNilTarget
				}
				return nil, fmt.Errorf("%T is not a schema row", target)
			}
			return row[name], nil
		},
	}
}
