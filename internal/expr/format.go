package expr

import (
	"strconv"
	"strings"

	"github.com/roach88/dynq/internal/types"
)

// Format renders e as an S-expression. The output is stable for a given
// tree and is used for golden files and the CLI text output.
//
//	Age > 20 and Name == "Bob"
//
// becomes
//
//	(and (gt (. it Age) 20:Int32) (eq (call String.Compare (. it Name) "Bob") 0:Int32))
func Format(e Expr) string {
	var b strings.Builder
	format(&b, e)
	return b.String()
}

func format(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Constant:
		formatConstant(b, n)
	case *Parameter:
		b.WriteString(paramName(n))
	case *MemberAccess:
		b.WriteString("(. ")
		formatTarget(b, n.Target, n.Member)
		b.WriteByte(' ')
		b.WriteString(n.Member.Name)
		b.WriteByte(')')
	case *Call:
		if n.Method.Kind == types.Constructor {
			b.WriteString("(new ")
			b.WriteString(n.Method.Type.String())
		} else if n.Target == nil {
			b.WriteString("(call ")
			b.WriteString(n.Method.Owner.String())
			b.WriteByte('.')
			b.WriteString(n.Method.Name)
		} else {
			b.WriteString("(call ")
			format(b, n.Target)
			b.WriteByte(' ')
			b.WriteString(n.Method.Name)
		}
		formatArgs(b, n.Args)
		b.WriteByte(')')
	case *Unary:
		b.WriteByte('(')
		b.WriteString(n.Op.String())
		if n.Op == Convert || n.Op == ConvertChecked {
			b.WriteByte(' ')
			b.WriteString(n.Typ.String())
		}
		b.WriteByte(' ')
		format(b, n.Operand)
		b.WriteByte(')')
	case *Binary:
		b.WriteByte('(')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		format(b, n.Left)
		b.WriteByte(' ')
		format(b, n.Right)
		b.WriteByte(')')
	case *Conditional:
		b.WriteString("(if ")
		format(b, n.Test)
		b.WriteByte(' ')
		format(b, n.Then)
		b.WriteByte(' ')
		format(b, n.Else)
		b.WriteByte(')')
	case *Invoke:
		b.WriteString("(invoke ")
		format(b, n.Lambda)
		formatArgs(b, n.Args)
		b.WriteByte(')')
	case *Index:
		b.WriteString("(index ")
		format(b, n.Target)
		formatArgs(b, n.Args)
		b.WriteByte(')')
	case *New:
		b.WriteString("(record ")
		b.WriteString(n.Record.String())
		for _, f := range n.Fields {
			b.WriteString(" (")
			b.WriteString(f.Name)
			b.WriteByte(' ')
			format(b, f.Value)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case *Lambda:
		b.WriteString("(lambda (")
		for i, p := range n.Params {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(paramName(p))
			b.WriteByte(':')
			b.WriteString(p.Typ.String())
		}
		b.WriteString(") ")
		format(b, n.Body)
		b.WriteByte(')')
	case *Aggregate:
		b.WriteByte('(')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
		format(b, n.Source)
		if n.Selector != nil {
			b.WriteByte(' ')
			format(b, n.Selector)
		}
		b.WriteByte(')')
	default:
		b.WriteString("<unknown>")
	}
}

func paramName(p *Parameter) string {
	if p.Name == "" {
		return "it"
	}
	return p.Name
}

func formatTarget(b *strings.Builder, target Expr, m *types.Member) {
	if target == nil {
		b.WriteString(m.Owner.String())
		return
	}
	format(b, target)
}

func formatArgs(b *strings.Builder, args []Expr) {
	for _, a := range args {
		b.WriteByte(' ')
		format(b, a)
	}
}

func formatConstant(b *strings.Builder, c *Constant) {
	switch {
	case c.Value == nil:
		b.WriteString("null")
	case c.Typ.Kind() == types.String:
		b.WriteString(strconv.Quote(c.Value.(string)))
		return
	case c.Typ.Kind() == types.Char:
		b.WriteString(strconv.QuoteRune(c.Value.(rune)))
		return
	default:
		b.WriteString(types.FormatValue(c.Value, c.Typ))
	}
	b.WriteByte(':')
	b.WriteString(c.Typ.String())
}
