package overload

import (
	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

// Candidate is one parameter list competing for a call or operator.
type Candidate struct {
	Params []types.Param
}

// CandidateOf returns the Candidate of an invocable member.
func CandidateOf(m *types.Member) Candidate {
	return Candidate{Params: m.Params}
}

// Result is the outcome of overload resolution.
//
// Count is the number of candidates left after applicability and dominance
// filtering: 1 means success, 0 means nothing applies and more than one is
// ambiguous. On success Index identifies the chosen candidate and Args
// holds the arguments promoted to its parameter types.
type Result struct {
	Count int
	Index int
	Args  []expr.Expr
}

// OK reports whether exactly one candidate was chosen.
func (r Result) OK() bool { return r.Count == 1 }

// Applicable promotes args to the parameters of c. It fails if the arity
// differs, a parameter is output-only or an argument does not convert.
func Applicable(c Candidate, args []expr.Expr) ([]expr.Expr, bool) {
	if len(c.Params) != len(args) {
		return nil, false
	}
	promoted := make([]expr.Expr, len(args))
	for i, p := range c.Params {
		if p.Out {
			return nil, false
		}
		e := Promote(args[i], p.Type, false)
		if e == nil {
			return nil, false
		}
		promoted[i] = e
	}
	return promoted, true
}

// CompareConversions ranks the conversions of a source type s to t1 and
// t2. It returns 1 if converting to t1 is better, -1 if t2 is better and 0
// if neither is.
func CompareConversions(s, t1, t2 *types.Type) int {
	switch {
	case t1 == t2:
		return 0
	case s == t1:
		return 1
	case s == t2:
		return -1
	}
	c12, c21 := IsCompatible(t1, t2), IsCompatible(t2, t1)
	switch {
	case c12 && !c21:
		return 1
	case c21 && !c12:
		return -1
	case t1.IsSignedIntegral() && t2.IsUnsignedIntegral():
		return 1
	case t2.IsSignedIntegral() && t1.IsUnsignedIntegral():
		return -1
	}
	return 0
}

// dominates reports whether a is at least as good as b for every argument
// and strictly better for one.
func dominates(args []expr.Expr, a, b Candidate) bool {
	better := false
	for i, arg := range args {
		switch CompareConversions(arg.Type(), a.Params[i].Type, b.Params[i].Type) {
		case -1:
			return false
		case 1:
			better = true
		}
	}
	return better
}

// FindBest selects the best candidate for args. Ranking uses the argument
// types before promotion.
func FindBest(cands []Candidate, args []expr.Expr) Result {
	type applicable struct {
		index int
		args  []expr.Expr
	}
	var found []applicable
	for i, c := range cands {
		if promoted, ok := Applicable(c, args); ok {
			found = append(found, applicable{index: i, args: promoted})
		}
	}
	if len(found) > 1 {
		var survivors []applicable
		for _, m := range found {
			dominated := false
			for _, n := range found {
				if n.index != m.index && dominates(args, cands[n.index], cands[m.index]) {
					dominated = true
					break
				}
			}
			if !dominated {
				survivors = append(survivors, m)
			}
		}
		found = survivors
	}
	if len(found) != 1 {
		return Result{Count: len(found), Index: -1}
	}
	return Result{Count: 1, Index: found[0].index, Args: found[0].args}
}
