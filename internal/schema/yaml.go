package schema

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dynq/internal/types"
)

// positions maps yaml.v3 line/column pairs to token positions so that YAML
// and CUE errors print alike.
type positions struct {
	file *token.File
}

func newPositions(filename string, data []byte) positions {
	f := token.NewFile(filename, -1, len(data))
	f.SetLinesForContent(data)
	return positions{file: f}
}

func (p positions) at(n *yaml.Node) token.Pos {
	if p.file == nil || n == nil || n.Line < 1 {
		return token.NoPos
	}
	lines := p.file.Lines()
	if n.Line > len(lines) {
		return token.NoPos
	}
	offset := lines[n.Line-1] + n.Column - 1
	if offset > p.file.Size() {
		return token.NoPos
	}
	return p.file.Pos(offset, token.NoRelPos)
}

func (p positions) errorf(code string, n *yaml.Node, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: p.at(n)}
}

// parseYAMLRoot decodes data and returns its top-level node.
func parseYAMLRoot(filename string, data []byte) (*yaml.Node, positions, error) {
	pos := newPositions(filename, data)
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, pos, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: %v", filename, err)}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, pos, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: empty document", filename)}
	}
	return root.Content[0], pos, nil
}

// ParseYAML parses a schema document. filename is only used in positions.
func ParseYAML(filename string, data []byte) (*Document, error) {
	top, pos, err := parseYAMLRoot(filename, data)
	if err != nil {
		return nil, err
	}
	if top.Kind != yaml.MappingNode {
		return nil, pos.errorf(ErrCodeInvalidDocument, top, "schema must be a mapping")
	}

	doc := &Document{}
	for i := 0; i < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		switch key.Value {
		case "enums":
			if val.Kind != yaml.MappingNode {
				return nil, pos.errorf(ErrCodeInvalidDocument, val, "enums must be a mapping")
			}
			for j := 0; j < len(val.Content); j += 2 {
				e, err := enumFromYAML(pos, val.Content[j], val.Content[j+1])
				if err != nil {
					return nil, err
				}
				doc.Enums = append(doc.Enums, *e)
			}
		case "types":
			if val.Kind != yaml.MappingNode {
				return nil, pos.errorf(ErrCodeInvalidDocument, val, "types must be a mapping")
			}
			for j := 0; j < len(val.Content); j += 2 {
				td, err := typeFromYAML(pos, val.Content[j], val.Content[j+1])
				if err != nil {
					return nil, err
				}
				doc.Types = append(doc.Types, *td)
			}
		default:
			return nil, pos.errorf(ErrCodeInvalidDocument, key, "unknown key %q: want enums or types", key.Value)
		}
	}
	if len(doc.Enums) == 0 && len(doc.Types) == 0 {
		return nil, pos.errorf(ErrCodeInvalidDocument, top, "schema declares no enums or types")
	}
	return doc, nil
}

func enumFromYAML(pos positions, key, val *yaml.Node) (*EnumDef, error) {
	e := &EnumDef{Name: key.Value, Pos: pos.at(key)}
	members := val
	if val.Kind == yaml.MappingNode {
		if u := mappingValue(val, "underlying"); u != nil {
			e.Underlying = u.Value
			members = mappingValue(val, "members")
			if members == nil {
				return nil, pos.errorf(ErrCodeInvalidEnum, key, "enum %s: members is required", e.Name)
			}
		}
	}

	switch members.Kind {
	case yaml.SequenceNode:
		for i, m := range members.Content {
			if m.Kind != yaml.ScalarNode {
				return nil, pos.errorf(ErrCodeInvalidEnum, m, "enum %s: member names must be strings", e.Name)
			}
			e.Members = append(e.Members, types.EnumMember{Name: m.Value, Value: int64(i)})
		}
	case yaml.MappingNode:
		for i := 0; i < len(members.Content); i += 2 {
			name, v := members.Content[i], members.Content[i+1]
			n, err := strconv.ParseInt(v.Value, 0, 64)
			if v.Kind != yaml.ScalarNode || err != nil {
				return nil, pos.errorf(ErrCodeInvalidEnum, v, "enum %s: member %s must be an integer", e.Name, name.Value)
			}
			e.Members = append(e.Members, types.EnumMember{Name: name.Value, Value: n})
		}
	default:
		return nil, pos.errorf(ErrCodeInvalidEnum, val, "enum %s must be a list or a mapping", e.Name)
	}
	return e, nil
}

func typeFromYAML(pos positions, key, val *yaml.Node) (*TypeDef, error) {
	td := &TypeDef{Name: key.Value, Pos: pos.at(key)}
	if val.Kind != yaml.MappingNode {
		return nil, pos.errorf(ErrCodeInvalidDocument, val, "type %s must be a mapping", td.Name)
	}
	for i := 0; i < len(val.Content); i += 2 {
		k, v := val.Content[i], val.Content[i+1]
		switch k.Value {
		case "base":
			if v.Kind != yaml.ScalarNode {
				return nil, pos.errorf(ErrCodeInvalidBase, v, "type %s: base must be a type name", td.Name)
			}
			td.Base = v.Value
		case "fields":
			if v.Kind != yaml.MappingNode {
				return nil, pos.errorf(ErrCodeInvalidDocument, v, "type %s: fields must be a mapping", td.Name)
			}
			for j := 0; j < len(v.Content); j += 2 {
				fk, fv := v.Content[j], v.Content[j+1]
				if fv.Kind != yaml.ScalarNode {
					return nil, pos.errorf(ErrCodeInvalidDocument, fv, "type %s: field %s must name a type", td.Name, fk.Value)
				}
				td.Fields = append(td.Fields, FieldDef{Name: fk.Value, Type: fv.Value, Pos: pos.at(fv)})
			}
		default:
			return nil, pos.errorf(ErrCodeInvalidDocument, k, "type %s: unknown key %q", td.Name, k.Value)
		}
	}
	return td, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
