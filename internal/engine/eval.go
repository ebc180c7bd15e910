package engine

import (
	"context"
	"reflect"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/record"
	"github.com/roach88/dynq/internal/types"
)

// scope holds the state of one evaluation.
type scope struct {
	ctx    context.Context
	params map[*expr.Parameter]any
	quota  *quota
}

func (e *Evaluator) newScope(ctx context.Context) *scope {
	return &scope{ctx: ctx, params: map[*expr.Parameter]any{}, quota: newQuota(e.maxSteps)}
}

func (s *scope) bind(p *expr.Parameter, v any) { s.params[p] = v }

// at attaches the failing node to err if it has none yet.
func at(err error, n expr.Expr) error {
	if re, ok := err.(*RuntimeError); ok && re.Node == "" {
		re.Node = expr.Format(n)
	}
	return err
}

func (s *scope) eval(n expr.Expr) (any, error) {
	if err := s.quota.check(); err != nil {
		return nil, err
	}
	v, err := s.evalNode(n)
	if err != nil {
		return nil, at(err, n)
	}
	return v, nil
}

func (s *scope) evalNode(n expr.Expr) (any, error) {
	switch x := n.(type) {
	case *expr.Constant:
		return x.Value, nil
	case *expr.Parameter:
		v, ok := s.params[x]
		if !ok {
			return nil, newError(ErrCodeUnboundParameter, "parameter %s is not bound", paramName(x))
		}
		return v, nil
	case *expr.MemberAccess:
		return s.memberAccess(x)
	case *expr.Call:
		return s.call(x)
	case *expr.Unary:
		return s.unary(x)
	case *expr.Binary:
		return s.binary(x)
	case *expr.Conditional:
		test, err := s.eval(x.Test)
		if err != nil {
			return nil, err
		}
		if b, _ := test.(bool); b {
			return s.eval(x.Then)
		}
		return s.eval(x.Else)
	case *expr.Invoke:
		args, err := s.evalList(x.Args)
		if err != nil {
			return nil, err
		}
		return s.invoke(x.Lambda, args...)
	case *expr.Index:
		return s.index(x)
	case *expr.New:
		return s.newRecord(x)
	case *expr.Aggregate:
		return s.aggregate(x)
	}
	return nil, newError(ErrCodeUnsupported, "cannot evaluate %T", n)
}

func paramName(p *expr.Parameter) string {
	if p.Name == "" {
		return "it"
	}
	return p.Name
}

func (s *scope) evalList(es []expr.Expr) ([]any, error) {
	out := make([]any, len(es))
	for i, a := range es {
		v, err := s.eval(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// invoke binds the lambda parameters for the duration of the body. The
// previous bindings are restored so an aggregate selector can rebind its
// element parameter on every iteration.
func (s *scope) invoke(l *expr.Lambda, args ...any) (any, error) {
	type saved struct {
		v     any
		bound bool
	}
	prev := make([]saved, len(l.Params))
	for i, p := range l.Params {
		v, ok := s.params[p]
		prev[i] = saved{v, ok}
		s.params[p] = args[i]
	}
	defer func() {
		for i, p := range l.Params {
			if prev[i].bound {
				s.params[p] = prev[i].v
			} else {
				delete(s.params, p)
			}
		}
	}()
	return s.eval(l.Body)
}

// target evaluates the instance of a member. Static members have none;
// members of a nullable wrapper receive a null instance as is.
func (s *scope) target(e expr.Expr, m *types.Member) (any, error) {
	if e == nil || m.Static {
		return nil, nil
	}
	v, err := s.eval(e)
	if err != nil {
		return nil, err
	}
	if v == nil && !e.Type().IsNullable() {
		return nil, newError(ErrCodeNullReference, "cannot access %s of a null %s", m.Name, e.Type())
	}
	return v, nil
}

func (s *scope) memberAccess(x *expr.MemberAccess) (any, error) {
	target, err := s.target(x.Target, x.Member)
	if err != nil {
		return nil, err
	}
	if x.Member.Get == nil {
		return nil, newError(ErrCodeUnsupported, "member %s has no accessor", x.Member.Name)
	}
	v, err := x.Member.Get(target)
	if err != nil {
		return nil, classify(err, ErrCodeMemberFailed)
	}
	return v, nil
}

func (s *scope) call(x *expr.Call) (any, error) {
	target, err := s.target(x.Target, x.Method)
	if err != nil {
		return nil, err
	}
	args, err := s.evalList(x.Args)
	if err != nil {
		return nil, err
	}
	if x.Method.Call == nil {
		return nil, newError(ErrCodeUnsupported, "method %s has no implementation", x.Method.Name)
	}
	v, err := x.Method.Call(target, args)
	if err != nil {
		return nil, classify(err, ErrCodeMemberFailed)
	}
	return v, nil
}

func (s *scope) index(x *expr.Index) (any, error) {
	target, err := s.eval(x.Target)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, newError(ErrCodeNullReference, "cannot index a null %s", x.Target.Type())
	}
	args, err := s.evalList(x.Args)
	if err != nil {
		return nil, err
	}
	if x.Indexer != nil {
		v, err := x.Indexer.Call(target, args)
		if err != nil {
			return nil, classify(err, ErrCodeMemberFailed)
		}
		return v, nil
	}
	i, _ := args[0].(int32)
	if items, ok := target.([]any); ok {
		if i < 0 || int(i) >= len(items) {
			return nil, newError(ErrCodeIndexOutOfRange, "index %d is outside the bounds of the array", i)
		}
		return items[i], nil
	}
	rv := reflect.ValueOf(target)
	if i < 0 || int(i) >= rv.Len() {
		return nil, newError(ErrCodeIndexOutOfRange, "index %d is outside the bounds of the array", i)
	}
	return rv.Index(int(i)).Interface(), nil
}

func (s *scope) newRecord(x *expr.New) (any, error) {
	rt, ok := record.Of(x.Record)
	if !ok {
		return nil, newError(ErrCodeUnsupported, "%s is not a record type", x.Record)
	}
	values := make([]any, len(x.Fields))
	for i, f := range x.Fields {
		v, err := s.eval(f.Value)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return rt.New(values...)
}
