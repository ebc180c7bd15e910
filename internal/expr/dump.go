package expr

import (
	"math"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

// Dump converts e to its canonical document form. Every node is an object
// with a "node" discriminator and a "type" key.
func Dump(e Expr) ir.IRObject {
	if e == nil {
		return nil
	}
	obj := ir.NewIRObject(ir.O("type", ir.IRString(e.Type().String())))
	switch n := e.(type) {
	case *Constant:
		obj["node"] = ir.IRString("constant")
		obj["value"] = DumpValue(n.Value, n.Typ)
	case *Parameter:
		obj["node"] = ir.IRString("parameter")
		obj["name"] = ir.IRString(paramName(n))
	case *MemberAccess:
		obj["node"] = ir.IRString("member")
		obj["member"] = ir.IRString(n.Member.Name)
		obj["owner"] = ir.IRString(n.Member.Owner.String())
		if n.Target != nil {
			obj["target"] = Dump(n.Target)
		}
	case *Call:
		obj["node"] = ir.IRString("call")
		obj["method"] = ir.IRString(n.Method.Name)
		obj["owner"] = ir.IRString(n.Method.Owner.String())
		obj["args"] = dumpList(n.Args)
		if n.Target != nil {
			obj["target"] = Dump(n.Target)
		}
	case *Unary:
		obj["node"] = ir.IRString("unary")
		obj["op"] = ir.IRString(n.Op.String())
		obj["operand"] = Dump(n.Operand)
	case *Binary:
		obj["node"] = ir.IRString("binary")
		obj["op"] = ir.IRString(n.Op.String())
		obj["left"] = Dump(n.Left)
		obj["right"] = Dump(n.Right)
	case *Conditional:
		obj["node"] = ir.IRString("conditional")
		obj["test"] = Dump(n.Test)
		obj["then"] = Dump(n.Then)
		obj["else"] = Dump(n.Else)
	case *Invoke:
		obj["node"] = ir.IRString("invoke")
		obj["lambda"] = Dump(n.Lambda)
		obj["args"] = dumpList(n.Args)
	case *Index:
		obj["node"] = ir.IRString("index")
		obj["target"] = Dump(n.Target)
		obj["args"] = dumpList(n.Args)
	case *New:
		obj["node"] = ir.IRString("new")
		fields := make(ir.IRArray, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ir.NewIRObject(ir.O("name", ir.IRString(f.Name)), ir.O("value", Dump(f.Value)))
		}
		obj["fields"] = fields
	case *Lambda:
		obj["node"] = ir.IRString("lambda")
		params := make(ir.IRArray, len(n.Params))
		for i, p := range n.Params {
			params[i] = Dump(p)
		}
		obj["params"] = params
		obj["body"] = Dump(n.Body)
	case *Aggregate:
		obj["node"] = ir.IRString("aggregate")
		obj["op"] = ir.IRString(n.Op.String())
		obj["source"] = Dump(n.Source)
		if n.Selector != nil {
			obj["selector"] = Dump(n.Selector)
		}
	}
	return obj
}

func dumpList(es []Expr) ir.IRArray {
	out := make(ir.IRArray, len(es))
	for i, e := range es {
		out[i] = Dump(e)
	}
	return out
}

// DumpValue converts a runtime value of type t to an IRValue. Integers that
// fit in 64 bits stay numeric; everything else is rendered as text.
func DumpValue(v any, t *types.Type) ir.IRValue {
	switch x := v.(type) {
	case nil:
		return ir.IRNull{}
	case bool:
		return ir.IRBool(x)
	case string:
		return ir.IRString(x)
	case int8:
		return ir.IRInt(x)
	case int16:
		return ir.IRInt(x)
	case int32:
		if t != nil && t.NonNullable().Kind() == types.Char {
			return ir.IRString(string(x))
		}
		return ir.IRInt(x)
	case int64:
		if t != nil && t.IsEnum() {
			if name := t.NonNullable().EnumName(x); name != "" {
				return ir.IRString(name)
			}
		}
		return ir.IRInt(x)
	case uint8:
		return ir.IRInt(x)
	case uint16:
		return ir.IRInt(x)
	case uint32:
		return ir.IRInt(x)
	case uint64:
		if x <= math.MaxInt64 {
			return ir.IRInt(x)
		}
	case []any:
		var elem *types.Type
		if t != nil {
			elem = t.Elem()
		}
		arr := make(ir.IRArray, len(x))
		for i, item := range x {
			arr[i] = DumpValue(item, elem)
		}
		return arr
	case interface{ Dump() ir.IRObject }:
		return x.Dump()
	}
	return ir.IRString(types.FormatValue(v, t))
}
