package record

import (
	"bytes"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dynq/internal/ir"
	"github.com/roach88/dynq/internal/types"
)

func ageName() Schema {
	return Schema{{Name: "A", Type: types.Int32Type}, {Name: "B", Type: types.StringType}}
}

func TestSchemaEqual(t *testing.T) {
	testCases := []struct {
		name string
		a, b Schema
		want bool
	}{
		{"identical", ageName(), ageName(), true},
		{"reordered", ageName(), Schema{{Name: "B", Type: types.StringType}, {Name: "A", Type: types.Int32Type}}, false},
		{"different type", ageName(), Schema{{Name: "A", Type: types.Int64Type}, {Name: "B", Type: types.StringType}}, false},
		{"different name case", ageName(), Schema{{Name: "a", Type: types.Int32Type}, {Name: "B", Type: types.StringType}}, false},
		{"prefix", ageName(), ageName()[:1], false},
		{"empty", Schema{}, nil, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Equal(tc.b))
			if tc.want {
				assert.Equal(t, tc.a.Hash(), tc.b.Hash())
			}
		})
	}
}

func TestSchemaHashIsOrderInsensitive(t *testing.T) {
	// XOR combination: reordered schemas share a bucket but stay distinct.
	s := ageName()
	r := Schema{s[1], s[0]}
	assert.Equal(t, s.Hash(), r.Hash())
	assert.Equal(t, uint64(0), Schema{}.Hash())
}

func TestGetOrCreate(t *testing.T) {
	c := NewCache()

	t1 := c.GetOrCreate(ageName())
	t2 := c.GetOrCreate(ageName())
	assert.Same(t, t1, t2)
	assert.Equal(t, types.Record, t1.Kind())
	assert.Equal(t, "Record1", t1.Name())

	t3 := c.GetOrCreate(Schema{{Name: "B", Type: types.StringType}, {Name: "A", Type: types.Int32Type}})
	assert.NotSame(t, t1, t3)
	assert.Equal(t, "Record2", t3.Name())
	assert.Equal(t, 2, c.Len())

	other := NewCache()
	assert.NotSame(t, t1, other.GetOrCreate(ageName()))
}

func TestGetOrCreateCopiesSchema(t *testing.T) {
	c := NewCache()
	s := ageName()
	typ := c.GetOrCreate(s)
	s[0].Name = "Z"

	rt, ok := Of(typ)
	require.True(t, ok)
	assert.Equal(t, "A", rt.Schema()[0].Name)
	assert.Same(t, typ, c.GetOrCreate(ageName()))
}

func TestGetOrCreateConcurrent(t *testing.T) {
	c := NewCache()
	const n = 64
	got := make([]*types.Type, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = c.GetOrCreate(ageName())
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.Equal(t, 1, c.Len())
}

func TestPending(t *testing.T) {
	c := NewCache()
	existing := c.GetOrCreate(ageName())

	p := c.Stage()
	assert.Same(t, existing, p.GetOrCreate(ageName()))
	inner := p.GetOrCreate(Schema{{Name: "Q", Type: types.Int32Type}})
	outer := p.GetOrCreate(Schema{{Name: "R", Type: inner}})
	assert.Same(t, inner, p.GetOrCreate(Schema{{Name: "Q", Type: types.Int32Type}}))
	assert.Equal(t, "Record2", inner.Name())
	assert.Equal(t, "Record3", outer.Name())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 1, c.Len(), "staged types stay private")

	require.True(t, p.Commit())
	assert.Equal(t, 3, c.Len())
	assert.Same(t, inner, c.GetOrCreate(Schema{{Name: "Q", Type: types.Int32Type}}))
	assert.Same(t, outer, c.GetOrCreate(Schema{{Name: "R", Type: inner}}))
}

func TestPendingDiscarded(t *testing.T) {
	c := NewCache()
	p := c.Stage()
	p.GetOrCreate(ageName())

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "Record1", c.GetOrCreate(Schema{{Name: "Z", Type: types.StringType}}).Name())
}

func TestPendingConflict(t *testing.T) {
	c := NewCache()
	p := c.Stage()
	staged := p.GetOrCreate(ageName())

	registered := c.GetOrCreate(ageName())
	assert.False(t, p.Commit())
	assert.Equal(t, 1, c.Len())
	assert.NotSame(t, staged, c.GetOrCreate(ageName()))
	assert.Same(t, registered, c.GetOrCreate(ageName()))

	assert.True(t, c.Stage().Commit(), "an empty batch always commits")
}

func TestGetOrCreateLogs(t *testing.T) {
	var buf bytes.Buffer
	c := NewCache(WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	c.GetOrCreate(ageName())
	c.GetOrCreate(ageName())

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("record type registered")))
	assert.Contains(t, buf.String(), "{A:Int32, B:String}")
}

func TestRecordMembers(t *testing.T) {
	c := NewCache()
	typ := c.GetOrCreate(ageName())
	rt, ok := Of(typ)
	require.True(t, ok)

	_, ok = Of(types.StringType)
	assert.False(t, ok)

	ms := typ.Members()
	require.Len(t, ms, 3)
	assert.Equal(t, "A", ms[0].Name)
	assert.Equal(t, types.Property, ms[0].Kind)
	assert.Same(t, typ, ms[0].Owner)
	assert.Same(t, rt.Constructor(), ms[2])

	v, err := rt.Constructor().Call(nil, []any{int32(25), "Bob"})
	require.NoError(t, err)
	got, err := ms[1].Get(v)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got)

	_, err = ms[0].Get("not a record")
	assert.Error(t, err)

	_, err = rt.New(int32(1))
	assert.Error(t, err)
}

func TestValueEqualAndHash(t *testing.T) {
	c := NewCache()
	rt, _ := Of(c.GetOrCreate(ageName()))
	swapped, _ := Of(c.GetOrCreate(Schema{{Name: "B", Type: types.StringType}, {Name: "A", Type: types.Int32Type}}))

	a, _ := rt.New(int32(25), "Bob")
	b, _ := rt.New(int32(25), "Bob")
	d, _ := rt.New(int32(26), "Bob")
	n, _ := rt.New(nil, "Bob")
	s, _ := swapped.New("Bob", int32(25))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(n))
	assert.False(t, a.Equal(s), "different record type")
	assert.False(t, a.Equal("Bob"))
	assert.True(t, types.EqualValues(a, b))

	empty, _ := Of(c.GetOrCreate(Schema{}))
	e1, _ := empty.New()
	e2, _ := empty.New()
	assert.True(t, e1.Equal(e2))
	assert.Equal(t, uint64(0), e1.Hash())
	assert.Equal(t, types.HashValue("Bob"), n.Hash())

	score, _ := Of(c.GetOrCreate(Schema{{Name: "Score", Type: types.Float64Type}}))
	zero, _ := score.New(0.0)
	negZero, _ := score.New(math.Copysign(0, -1))
	assert.True(t, zero.Equal(negZero))
	assert.Equal(t, zero.Hash(), negZero.Hash())
}

func TestValueAccessors(t *testing.T) {
	c := NewCache()
	rt, _ := Of(c.GetOrCreate(ageName()))
	v, _ := rt.New(int32(25), "Bob")

	assert.Same(t, rt, v.RecordType())
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, int32(25), v.Get(0))
	got, ok := v.Field("B")
	assert.True(t, ok)
	assert.Equal(t, "Bob", got)
	_, ok = v.Field("b")
	assert.False(t, ok)

	assert.Equal(t, "{A=25, B=Bob}", v.String())
	assert.Equal(t, ir.IRObject{"A": ir.IRInt(25), "B": ir.IRString("Bob")}, v.Dump())
}
