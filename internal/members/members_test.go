package members

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/expr"
	"github.com/roach88/dynq/internal/types"
)

func arg(t *types.Type) expr.Expr { return &expr.Parameter{Name: "a", Typ: t} }

func method(name string, ret *types.Type, params ...types.Param) *types.Member {
	return &types.Member{Name: name, Kind: types.Method, Type: ret, Params: params}
}

// fixture builds Animal <- Dog, plus INamed <- IPet <- (INamed again).
type fixture struct {
	animal, dog, named, pet, walker *types.Type
}

func newFixture() fixture {
	f := fixture{
		animal: types.NewObject("Animal"),
		dog:    types.NewObject("Dog"),
		named:  types.NewInterface("INamed"),
		pet:    types.NewInterface("IPet"),
		walker: types.NewInterface("IWalker"),
	}
	f.named.Bind(types.NewMemberSet(f.named, []*types.Member{
		{Name: "Name", Kind: types.Property, Type: types.StringType},
	}))
	f.walker.Bind(types.NewMemberSet(f.walker, nil, f.named))
	f.pet.Bind(types.NewMemberSet(f.pet, []*types.Member{
		{Name: "Owner", Kind: types.Property, Type: types.StringType},
	}, f.named, f.walker))
	f.animal.Bind(types.NewMemberSet(f.animal, []*types.Member{
		{Name: "Legs", Kind: types.Field, Type: types.Int32Type},
		{Name: "Name", Kind: types.Property, Type: types.StringType},
		method("Feed", types.BoolType, types.P("grams", types.Int32Type)),
	}))
	f.dog.Bind(types.NewMemberSet(f.dog, []*types.Member{
		{Name: "Breed", Kind: types.Property, Type: types.StringType},
		{Name: "Kennels", Kind: types.Property, Type: types.Int32Type, Static: true},
		method("Feed", types.BoolType, types.P("food", types.StringType)),
		method("Bark", types.VoidType),
	}, f.animal))
	return f
}

func TestSelfAndBases(t *testing.T) {
	f := newFixture()
	assert.Equal(t, []*types.Type{f.dog, f.animal, types.ObjectType}, SelfAndBases(f.dog))
	assert.Equal(t, []*types.Type{f.pet, f.named, f.walker}, SelfAndBases(f.pet))
	assert.Equal(t, []*types.Type{types.ObjectType}, SelfAndBases(types.ObjectType))
}

func TestFindPropertyOrField(t *testing.T) {
	f := newFixture()
	testCases := []struct {
		name      string
		typ       *types.Type
		member    string
		static    bool
		wantOwner *types.Type
	}{
		{"own property", f.dog, "Breed", false, f.dog},
		{"case-insensitive", f.dog, "bReEd", false, f.dog},
		{"inherited field", f.dog, "legs", false, f.animal},
		{"inherited through interfaces", f.pet, "Name", false, f.named},
		{"static hidden from instance", f.dog, "Kennels", false, nil},
		{"static only", f.dog, "Kennels", true, f.dog},
		{"instance hidden from static", f.dog, "Breed", true, nil},
		{"missing", f.dog, "Tail", false, nil},
		{"predefined static", types.StringType, "Empty", true, types.StringType},
		{"predefined instance", types.StringType, "length", false, types.StringType},
		{"predefined static hidden from instance", types.StringType, "Empty", false, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := FindPropertyOrField(tc.typ, tc.member, tc.static)
			if tc.wantOwner == nil {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Same(t, tc.wantOwner, m.Owner)
		})
	}
}

func TestFindPropertyOrFieldEnum(t *testing.T) {
	color := types.NewEnum("Color", nil,
		types.EnumMember{Name: "Red", Value: 0},
		types.EnumMember{Name: "Green", Value: 1})

	m := FindPropertyOrField(color, "green", true)
	require.NotNil(t, m)
	assert.Equal(t, "Green", m.Name)
	assert.Same(t, color, m.Type)
	v, err := m.Get(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	assert.Nil(t, FindPropertyOrField(color, "Blue", true))
}

func TestFindMethod(t *testing.T) {
	f := newFixture()

	t.Run("own overload", func(t *testing.T) {
		r := FindMethod(f.dog, "feed", false, []expr.Expr{arg(types.StringType)})
		require.True(t, r.OK())
		assert.Same(t, f.dog, r.Member.Owner)
	})

	t.Run("falls through to base when nothing applies", func(t *testing.T) {
		r := FindMethod(f.dog, "Feed", false, []expr.Expr{arg(types.Int16Type)})
		require.True(t, r.OK())
		assert.Same(t, f.animal, r.Member.Owner)
		assert.Same(t, types.Int32Type, r.Args[0].Type())
	})

	t.Run("object members at the end", func(t *testing.T) {
		r := FindMethod(f.dog, "ToString", false, nil)
		require.True(t, r.OK())
		assert.Same(t, types.ObjectType, r.Member.Owner)
	})

	t.Run("no applicable", func(t *testing.T) {
		r := FindMethod(f.dog, "Feed", false, []expr.Expr{arg(types.BoolType)})
		assert.Equal(t, 0, r.Count)
		assert.Nil(t, r.Member)
	})

	t.Run("overload by arity", func(t *testing.T) {
		r := FindMethod(types.StringType, "Substring", false, []expr.Expr{arg(types.Int32Type), arg(types.Int32Type)})
		require.True(t, r.OK())
		assert.Len(t, r.Member.Params, 2)
	})

	t.Run("static overload picks closest widening", func(t *testing.T) {
		r := FindMethod(types.MathType, "Max", true, []expr.Expr{arg(types.Int32Type), arg(types.Int64Type)})
		require.True(t, r.OK())
		assert.Same(t, types.Int64Type, r.Member.Type)
	})

	t.Run("instance methods hidden from static access", func(t *testing.T) {
		r := FindMethod(types.StringType, "Trim", true, nil)
		assert.Equal(t, 0, r.Count)
	})

	t.Run("static methods hidden from instance access", func(t *testing.T) {
		r := FindMethod(types.MathType, "Max", false, []expr.Expr{arg(types.Int32Type), arg(types.Int32Type)})
		assert.Equal(t, 0, r.Count)
	})
}

func TestFindIndexer(t *testing.T) {
	r := FindIndexer(types.StringType, []expr.Expr{arg(types.Int16Type)})
	require.True(t, r.OK())
	assert.Same(t, types.CharType, r.Member.Type)

	r = FindIndexer(types.StringType, []expr.Expr{arg(types.StringType)})
	assert.Equal(t, 0, r.Count)

	r = FindIndexer(types.Int32Type, []expr.Expr{arg(types.Int32Type)})
	assert.Equal(t, 0, r.Count)
}

func TestFindConstructor(t *testing.T) {
	ints := func(n int) []expr.Expr {
		out := make([]expr.Expr, n)
		for i := range out {
			out[i] = arg(types.Int32Type)
		}
		return out
	}

	r := FindConstructor(types.DateTimeType, ints(3))
	require.True(t, r.OK())
	assert.Len(t, r.Member.Params, 3)

	r = FindConstructor(types.TimeSpanType, ints(1))
	require.True(t, r.OK())
	assert.Same(t, types.Int64Type, r.Member.Params[0].Type)

	r = FindConstructor(types.DateTimeType, ints(2))
	assert.Equal(t, 0, r.Count)

	r = FindConstructor(types.MathType, nil)
	assert.Equal(t, 0, r.Count)
}

func TestIsAccessible(t *testing.T) {
	f := newFixture()
	assert.True(t, IsAccessible(types.StringType))
	assert.True(t, IsAccessible(types.MathType))
	assert.False(t, IsAccessible(f.dog))
	assert.True(t, IsAccessible(f.dog, f.animal, f.dog))
}

func TestElementType(t *testing.T) {
	e, ok := ElementType(types.ArrayOf(types.Int32Type, 1))
	require.True(t, ok)
	assert.Same(t, types.Int32Type, e)

	_, ok = ElementType(types.StringType)
	assert.False(t, ok)
}

func TestFindAggregate(t *testing.T) {
	elem := types.Int32Type
	testCases := []struct {
		name     string
		agg      string
		args     []expr.Expr
		wantOK   bool
		wantOp   expr.AggregateOp
		wantType *types.Type
	}{
		{"where", "Where", []expr.Expr{arg(types.BoolType)}, true, expr.Where, types.SequenceOf(elem)},
		{"any bare", "any", nil, true, expr.Any, types.BoolType},
		{"any predicate", "Any", []expr.Expr{arg(types.BoolType)}, true, expr.Any, types.BoolType},
		{"all requires predicate", "All", nil, false, 0, nil},
		{"count", "COUNT", nil, true, expr.Count, types.Int32Type},
		{"min keeps selector type", "Min", []expr.Expr{arg(types.StringType)}, true, expr.Min, types.StringType},
		{"sum widens", "Sum", []expr.Expr{arg(types.Int16Type)}, true, expr.Sum, types.Int32Type},
		{"sum nullable", "Sum", []expr.Expr{arg(types.NullableOf(types.Int64Type))}, true, expr.Sum, types.NullableOf(types.Int64Type)},
		{"average of ints", "Average", []expr.Expr{arg(types.Int64Type)}, true, expr.Average, types.Float64Type},
		{"average of decimal", "Average", []expr.Expr{arg(types.DecimalType)}, true, expr.Average, types.DecimalType},
		{"sum of strings", "Sum", []expr.Expr{arg(types.StringType)}, false, 0, nil},
		{"not an aggregate", "First", nil, false, 0, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := FindAggregate(tc.agg, elem, tc.args)
			require.Equal(t, tc.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.wantOp, r.Op)
			assert.Same(t, tc.wantType, r.Type)
			assert.Equal(t, len(tc.args) == 1, r.Selector != nil)
		})
	}
	assert.True(t, IsAggregate("average"))
	assert.False(t, IsAggregate("Length"))
}
