package schema

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dynq/internal/types"
)

// LoadRows reads a YAML file holding a sequence of values of t.
func LoadRows(path string, t *types.Type) ([]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("data file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading data: %v", err)}
	}
	return ParseRows(path, data, t)
}

// ParseRows decodes a YAML sequence of values of t. Object values become
// Rows; scalars take the runtime form of their type.
func ParseRows(filename string, data []byte, t *types.Type) ([]any, error) {
	top, pos, err := parseYAMLRoot(filename, data)
	if err != nil {
		return nil, err
	}
	if top.Kind != yaml.SequenceNode {
		return nil, pos.errorf(ErrCodeInvalidData, top, "data must be a sequence of %s values", t)
	}
	d := decoder{pos: pos}
	rows := make([]any, len(top.Content))
	for i, n := range top.Content {
		v, err := d.decode(n, t)
		if err != nil {
			return nil, err
		}
		rows[i] = v
	}
	return rows, nil
}

type decoder struct {
	pos positions
}

func (d decoder) decode(n *yaml.Node, t *types.Type) (any, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		if !t.CanBeNull() {
			return nil, d.pos.errorf(ErrCodeInvalidData, n, "null is not a valid %s", t)
		}
		return nil, nil
	}

	nt := t.NonNullable()
	switch nt.Kind() {
	case types.Object:
		if nt.Descriptor() == nil || nt == types.ObjectType {
			return nil, d.pos.errorf(ErrCodeInvalidData, n, "%s values cannot be decoded", t)
		}
		return d.row(n, nt)
	case types.Array:
		if nt.Rank() != 1 {
			return nil, d.pos.errorf(ErrCodeInvalidData, n, "%s values cannot be decoded", t)
		}
		if n.Kind != yaml.SequenceNode {
			return nil, d.pos.errorf(ErrCodeInvalidData, n, "want a sequence of %s", nt.Elem())
		}
		out := make([]any, len(n.Content))
		for i, e := range n.Content {
			v, err := d.decode(e, nt.Elem())
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	if n.Kind != yaml.ScalarNode {
		return nil, d.pos.errorf(ErrCodeInvalidData, n, "want a %s scalar", t)
	}
	v, err := scalar(n, nt)
	if err != nil {
		return nil, d.pos.errorf(ErrCodeInvalidData, n, "%s: %v", t, err)
	}
	return v, nil
}

func scalar(n *yaml.Node, t *types.Type) (any, error) {
	switch t.Kind() {
	case types.DateTime:
		return dateparse.ParseIn(n.Value, time.UTC)
	case types.Enum:
		if n.Tag == "!!int" {
			i, err := strconv.ParseInt(n.Value, 0, 64)
			if err != nil {
				return nil, err
			}
			return types.ConvertValue(i, t, true)
		}
	}
	return types.ConvertValue(n.Value, t, true)
}

func (d decoder) row(n *yaml.Node, t *types.Type) (any, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.pos.errorf(ErrCodeInvalidData, n, "want a %s mapping", t)
	}
	fields := fieldsOf(t)
	row := make(Row, len(fields))
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		f := lookupField(fields, k.Value)
		if f == nil {
			return nil, d.pos.errorf(ErrCodeInvalidData, k, "%s has no field %s", t, k.Value)
		}
		if _, dup := row[f.Name]; dup {
			return nil, d.pos.errorf(ErrCodeInvalidData, k, "field %s given twice", f.Name)
		}
		val, err := d.decode(v, f.Type)
		if err != nil {
			return nil, err
		}
		row[f.Name] = val
	}
	for _, f := range fields {
		if _, ok := row[f.Name]; ok {
			continue
		}
		if !f.Type.CanBeNull() {
			return nil, d.pos.errorf(ErrCodeInvalidData, n, "%s: missing field %s", t, f.Name)
		}
		row[f.Name] = nil
	}
	return row, nil
}

// fieldsOf lists the fields of t and its bases, base fields first.
func fieldsOf(t *types.Type) []*types.Member {
	var out []*types.Member
	for _, b := range t.Bases() {
		out = append(out, fieldsOf(b)...)
	}
	for _, m := range t.Members() {
		if m.Kind == types.Field {
			out = append(out, m)
		}
	}
	return out
}

func lookupField(fields []*types.Member, name string) *types.Member {
	for _, f := range fields {
		if types.SameName(f.Name, name) {
			return f
		}
	}
	return nil
}
