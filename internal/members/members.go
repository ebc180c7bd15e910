// Package members looks up fields, properties, methods, indexers and
// constructors on type descriptors, and resolves sequence aggregates.
//
// Lookup walks a type and then its bases, stopping at the first type that
// declares a matching member. Names compare case-insensitively. Invocable
// members are chosen with overload.FindBest; only members declared on an
// allow-listed type may be wired into a tree (see IsAccessible).
package members

import (
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/overload"
	"github.com/roach88/dynq/internal/types"
)

// Resolution is the outcome of resolving an invocable member.
//
// Count follows overload.Result: 1 on success, 0 when no candidate applies
// and more than 1 when the call is ambiguous.
type Resolution struct {
	Member *types.Member
	Args   []expr.Expr
	Count  int
}

// OK reports whether exactly one member was chosen.
func (r Resolution) OK() bool { return r.Count == 1 }

// SelfAndBases returns t followed by the types it inherits members from,
// each visited once. Interfaces list the interfaces they extend
// transitively. Other types end with Object.
func SelfAndBases(t *types.Type) []*types.Type {
	seen := map[*types.Type]bool{t: true}
	out := []*types.Type{t}
	var walk func(*types.Type)
	walk = func(t *types.Type) {
		for _, b := range t.Bases() {
			if seen[b] {
				continue
			}
			seen[b] = true
			out = append(out, b)
			walk(b)
		}
	}
	walk(t)
	if !t.IsInterface() && !seen[types.ObjectType] {
		out = append(out, types.ObjectType)
	}
	return out
}

// declared returns the members of t with the given kinds and name. An
// empty name matches every member. Static lookups only see static members
// and instance lookups only instance members.
func declared(t *types.Type, name string, static bool, kinds ...types.MemberKind) []*types.Member {
	var out []*types.Member
	for _, m := range t.Members() {
		if static != m.Static {
			continue
		}
		if name != "" && !types.SameName(m.Name, name) {
			continue
		}
		for _, k := range kinds {
			if m.Kind == k {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// FindPropertyOrField returns the first field or property named name on t
// or its bases, or nil. Enum members are exposed as static fields of the
// enum type.
func FindPropertyOrField(t *types.Type, name string, static bool) *types.Member {
	if t.Kind() == types.Enum && static {
		if m := enumField(t, name); m != nil {
			return m
		}
	}
	for _, s := range SelfAndBases(t) {
		if ms := declared(s, name, static, types.Field, types.Property); len(ms) != 0 {
			return ms[0]
		}
	}
	return nil
}

func enumField(t *types.Type, name string) *types.Member {
	for _, em := range t.EnumMembers() {
		if types.SameName(em.Name, name) {
			v := em.Value
			return &types.Member{
				Name:   em.Name,
				Kind:   types.Field,
				Type:   t,
				Static: true,
				Owner:  t,
				Get:    func(any) (any, error) { return v, nil },
			}
		}
	}
	return nil
}

// best runs overload resolution over a member set.
func best(ms []*types.Member, args []expr.Expr) Resolution {
	cands := make([]overload.Candidate, len(ms))
	for i, m := range ms {
		cands[i] = overload.CandidateOf(m)
	}
	r := overload.FindBest(cands, args)
	if !r.OK() {
		return Resolution{Count: r.Count}
	}
	return Resolution{Member: ms[r.Index], Args: r.Args, Count: 1}
}

// FindMethod resolves a method call on t. Each type in SelfAndBases is
// tried in turn; the first one with an applicable or ambiguous overload
// decides.
func FindMethod(t *types.Type, name string, static bool, args []expr.Expr) Resolution {
	for _, s := range SelfAndBases(t) {
		ms := declared(s, name, static, types.Method)
		if len(ms) == 0 {
			continue
		}
		if r := best(ms, args); r.Count != 0 {
			return r
		}
	}
	return Resolution{}
}

// FindIndexer resolves an indexer on t or its bases.
func FindIndexer(t *types.Type, args []expr.Expr) Resolution {
	for _, s := range SelfAndBases(t) {
		ms := declared(s, "", false, types.Indexer)
		if len(ms) == 0 {
			continue
		}
		if r := best(ms, args); r.Count != 0 {
			return r
		}
	}
	return Resolution{}
}

// FindConstructor resolves a constructor of t. Constructors are not
// inherited.
func FindConstructor(t *types.Type, args []expr.Expr) Resolution {
	var ms []*types.Member
	for _, m := range t.Members() {
		if m.Kind == types.Constructor {
			ms = append(ms, m)
		}
	}
	if len(ms) == 0 {
		return Resolution{}
	}
	return best(ms, args)
}

// ElementType reports the element type of an enumerable type. Strings are
// not enumerable.
func ElementType(t *types.Type) (*types.Type, bool) {
	return t.ElementType()
}

// IsAccessible reports whether methods declared on t may be invoked from
// expression text. Only the predefined types qualify, plus any extra types
// a host allows explicitly.
func IsAccessible(t *types.Type, extra ...*types.Type) bool {
	if types.IsPredefined(t) {
		return true
	}
	for _, x := range extra {
		if x == t {
			return true
		}
	}
	return false
}
