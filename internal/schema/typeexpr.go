package schema

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/roach88/dynq/internal/types"
)

// parseTypeExpr parses Name followed by any number of "?", "[]" or "[,]"
// suffixes, applied left to right.
func parseTypeExpr(src string, named func(string) *types.Type) (*types.Type, error) {
	s := strings.TrimSpace(src)
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if end < 0 {
		end = len(s)
	}
	name := s[:end]
	if name == "" {
		return nil, fmt.Errorf("type expression %q has no type name", src)
	}
	t := named(name)
	if t == nil {
		return nil, fmt.Errorf("unknown type %s", name)
	}

	rest := strings.TrimSpace(s[end:])
	for rest != "" {
		switch rest[0] {
		case '?':
			if !t.IsValueType() {
				return nil, fmt.Errorf("type expression %q: %s cannot be nullable", src, t)
			}
			t = types.NullableOf(t)
			rest = rest[1:]
		case '[':
			rb := strings.IndexByte(rest, ']')
			if rb < 0 {
				return nil, fmt.Errorf("type expression %q: missing ]", src)
			}
			dims := rest[1:rb]
			if strings.Trim(dims, ",") != "" {
				return nil, fmt.Errorf("type expression %q: unexpected %q in array rank", src, dims)
			}
			t = types.ArrayOf(t, len(dims)+1)
			rest = rest[rb+1:]
		default:
			return nil, fmt.Errorf("type expression %q: unexpected %q", src, rest)
		}
	}
	return t, nil
}
