// Package testutil provides host types and sample data shared by the
// compiler, evaluator and CLI tests.
package testutil

import (
	"reflect"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

// Color is registered as an enum by Registry.
type Color int32

const (
	Red Color = iota
	Green
	Blue
)

// Entity is embedded by Person and becomes its base type.
type Entity struct {
	ID uuid.UUID
}

type Address struct {
	City string
	Zip  string
}

type Order struct {
	Number int64
	Total  float64
	Qty    int32
	Placed time.Time
}

type Person struct {
	Entity
	Name    string
	Age     int32
	Score   *float64
	Balance apd.Decimal
	Color   Color
	Born    time.Time
	Tags    []string
	Orders  []Order
	Home    *Address
	Attrs   map[string]string
}

// Greet is an instance method. It is only invocable when Person is passed
// as an accessible type.
func (p Person) Greet(prefix string) string {
	return prefix + " " + p.Name
}

// Touch returns nothing.
func (p *Person) Touch() {}

// Registry returns a fresh registry with Color registered.
func Registry(t testing.TB) *types.Registry {
	t.Helper()
	r := types.NewRegistry()
	_, err := r.RegisterEnum(reflect.TypeFor[Color](), "Color",
		types.EnumMember{Name: "Red", Value: 0},
		types.EnumMember{Name: "Green", Value: 1},
		types.EnumMember{Name: "Blue", Value: 2},
	)
	require.NoError(t, err)
	return r
}

// TypeOf reflects T through r.
func TypeOf[T any](t testing.TB, r *types.Registry) *types.Type {
	t.Helper()
	typ, err := types.TypeFor[T](r)
	require.NoError(t, err)
	return typ
}

// It returns the implicit element parameter over Person.
func It(t testing.TB, r *types.Registry) *expr.Parameter {
	t.Helper()
	return &expr.Parameter{Typ: TypeOf[Person](t, r)}
}

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Decimal parses s, failing the test on error.
func Decimal(t testing.TB, s string) apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return *d
}

// People returns three sample people. Bob has two orders and no score.
func People(t testing.TB) []Person {
	t.Helper()
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []Person{
		{
			Entity:  Entity{ID: uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")},
			Name:    "Alice",
			Age:     34,
			Score:   Float(91.5),
			Balance: Decimal(t, "120.50"),
			Color:   Blue,
			Born:    day(1990, time.March, 4),
			Tags:    []string{"admin", "ops"},
			Orders: []Order{
				{Number: 1001, Total: 25, Qty: 1, Placed: day(2024, time.January, 10)},
			},
			Home:  &Address{City: "Oslo", Zip: "0150"},
			Attrs: map[string]string{"team": "core"},
		},
		{
			Entity:  Entity{ID: uuid.MustParse("1b4e28ba-2fa1-41d2-883f-0016d3cca427")},
			Name:    "Bob",
			Age:     25,
			Balance: Decimal(t, "-3.25"),
			Color:   Green,
			Born:    day(1999, time.July, 21),
			Tags:    []string{"dev"},
			Orders: []Order{
				{Number: 1002, Total: 40.5, Qty: 3, Placed: day(2024, time.February, 2)},
				{Number: 1003, Total: 9.5, Qty: 1, Placed: day(2024, time.March, 15)},
			},
			Attrs: map[string]string{"team": "web"},
		},
		{
			Entity:  Entity{ID: uuid.MustParse("6fa459ea-ee8a-3ca4-894e-db77e160355e")},
			Name:    "Carol",
			Age:     19,
			Score:   Float(72),
			Balance: Decimal(t, "0"),
			Color:   Red,
			Born:    day(2005, time.November, 30),
			Home:    &Address{City: "Bergen", Zip: "5003"},
		},
	}
}
