// Package symbols holds the names visible to an expression: the shared
// keyword table, declared parameters, positional and named external values,
// and the implicit element parameter "it".
package symbols

import (
	"fmt"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

// Keyword is a reserved identifier that is not a type name.
type Keyword uint8

const (
	True Keyword = iota + 1
	False
	Null
	It
	Iif
	NewKeyword
)

func (k Keyword) String() string {
	switch k {
	case True:
		return "true"
	case False:
		return "false"
	case Null:
		return "null"
	case It:
		return "it"
	case Iif:
		return "iif"
	case NewKeyword:
		return "new"
	}
	return "keyword?"
}

// keywords maps folded names to a Keyword or a predefined *types.Type. It is
// built once at init and only read afterwards.
var keywords = func() map[string]any {
	m := map[string]any{}
	for _, k := range []Keyword{True, False, Null, It, Iif, NewKeyword} {
		m[types.FoldName(k.String())] = k
	}
	for _, t := range types.Predefined {
		m[types.FoldName(t.Name())] = t
	}
	return m
}()

// LookupKeyword resolves name against the keyword table. The result is a
// Keyword or a *types.Type.
func LookupKeyword(name string) (any, bool) {
	v, ok := keywords[types.FoldName(name)]
	return v, ok
}

// Env is the per-compile symbol environment. It is not safe for concurrent
// use; each compile call builds its own.
type Env struct {
	symbols   map[string]any
	externals map[string]any
	it        *expr.Parameter
}

// New returns an empty environment.
func New() *Env {
	return &Env{symbols: map[string]any{}}
}

// Add registers a symbol. Names are case-insensitive and may only be
// defined once.
func (e *Env) Add(name string, value any) error {
	key := types.FoldName(name)
	if _, ok := e.symbols[key]; ok {
		return expr.Errorf(0, "The identifier '%s' was defined more than once", name)
	}
	e.symbols[key] = value
	return nil
}

// AddParameters declares the expression parameters. A single unnamed
// parameter becomes the implicit "it"; otherwise every parameter is added
// under its name.
func (e *Env) AddParameters(params []*expr.Parameter) error {
	if len(params) == 1 && params[0].Name == "" {
		e.it = params[0]
		return nil
	}
	for _, p := range params {
		if p.Name == "" {
			return expr.Errorf(0, "only a single parameter may be anonymous")
		}
		if err := e.Add(p.Name, p); err != nil {
			return err
		}
	}
	return nil
}

// AddValues registers positional values as @0, @1, .... If the last value
// is a map[string]any it is not registered positionally and becomes the
// named fallback instead.
func (e *Env) AddValues(values []any) error {
	for i, v := range values {
		if m, ok := v.(map[string]any); ok && i == len(values)-1 {
			e.externals = m
			continue
		}
		if err := e.Add(fmt.Sprintf("@%d", i), v); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves name against the declared symbols, then the named
// fallback.
func (e *Env) Lookup(name string) (any, bool) {
	if v, ok := e.symbols[types.FoldName(name)]; ok {
		return v, true
	}
	if e.externals != nil {
		if v, ok := e.externals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// It returns the implicit element parameter, or nil if none is in scope.
func (e *Env) It() *expr.Parameter { return e.it }

// PushIt makes p the implicit element for the duration of an aggregate
// argument list. The returned func restores the previous one.
func (e *Env) PushIt(p *expr.Parameter) (restore func()) {
	outer := e.it
	e.it = p
	return func() { e.it = outer }
}
