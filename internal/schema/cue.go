package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"

	"github.com/roach88/dynq/internal/types"
)

func loadCUE(dir, arg string) (*Document, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{arg}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Validate(); err != nil {
		le := formatCUEError(err)
		le.Code = ErrCodeBuildFailed
		return nil, le
	}
	return documentFromCUE(value)
}

// documentFromCUE reads the enums and types structs of v.
func documentFromCUE(v cue.Value) (*Document, error) {
	doc := &Document{}

	enums := v.LookupPath(cue.ParsePath("enums"))
	if enums.Exists() {
		iter, err := enums.Fields()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: "enums must be a struct", Pos: enums.Pos()}
		}
		for iter.Next() {
			e, err := enumFromCUE(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			doc.Enums = append(doc.Enums, *e)
		}
	}

	decls := v.LookupPath(cue.ParsePath("types"))
	if decls.Exists() {
		iter, err := decls.Fields()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: "types must be a struct", Pos: decls.Pos()}
		}
		for iter.Next() {
			td, err := typeFromCUE(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			doc.Types = append(doc.Types, *td)
		}
	}

	if len(doc.Enums) == 0 && len(doc.Types) == 0 {
		return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: "schema declares no enums or types", Pos: v.Pos()}
	}
	return doc, nil
}

// enumFromCUE accepts a list of names, a struct of name: value, or a
// struct with underlying and members.
func enumFromCUE(name string, v cue.Value) (*EnumDef, error) {
	e := &EnumDef{Name: name, Pos: v.Pos()}
	members := v
	if v.IncompleteKind() == cue.StructKind {
		if u := v.LookupPath(cue.ParsePath("underlying")); u.Exists() {
			s, err := u.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			e.Underlying = s
			members = v.LookupPath(cue.ParsePath("members"))
			if !members.Exists() {
				return nil, &LoadError{Code: ErrCodeInvalidEnum, Message: fmt.Sprintf("enum %s: members is required", name), Pos: v.Pos()}
			}
		}
	}

	switch members.IncompleteKind() {
	case cue.ListKind:
		list, err := members.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var i int64
		for list.Next() {
			s, err := list.Value().String()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeInvalidEnum, Message: fmt.Sprintf("enum %s: member names must be strings", name), Pos: list.Value().Pos()}
			}
			e.Members = append(e.Members, types.EnumMember{Name: s, Value: i})
			i++
		}
	case cue.StructKind:
		iter, err := members.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			n, err := iter.Value().Int64()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeInvalidEnum, Message: fmt.Sprintf("enum %s: member %s must be an integer", name, iter.Label()), Pos: iter.Value().Pos()}
			}
			e.Members = append(e.Members, types.EnumMember{Name: iter.Label(), Value: n})
		}
	default:
		return nil, &LoadError{Code: ErrCodeInvalidEnum, Message: fmt.Sprintf("enum %s must be a list or a struct", name), Pos: v.Pos()}
	}
	return e, nil
}

func typeFromCUE(name string, v cue.Value) (*TypeDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	td := &TypeDef{Name: name, Pos: v.Pos()}

	if b := v.LookupPath(cue.ParsePath("base")); b.Exists() {
		s, err := b.String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidBase, Message: fmt.Sprintf("type %s: base must be a type name", name), Pos: b.Pos()}
		}
		td.Base = s
	}

	fields := v.LookupPath(cue.ParsePath("fields"))
	if !fields.Exists() {
		return td, nil
	}
	iter, err := fields.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: fmt.Sprintf("type %s: fields must be a struct", name), Pos: fields.Pos()}
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: fmt.Sprintf("type %s: field %s must name a type", name, iter.Label()), Pos: iter.Value().Pos()}
		}
		td.Fields = append(td.Fields, FieldDef{Name: iter.Label(), Type: s, Pos: iter.Value().Pos()})
	}
	return td, nil
}

// formatCUEError converts the first CUE error to a LoadError with its
// position.
func formatCUEError(err error) *LoadError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: ErrCodeGeneric, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
