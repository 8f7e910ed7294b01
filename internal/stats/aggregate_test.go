package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	table := Fold(Records([]byte("Paris;10.0\nParis;20.0\nLondon;5.5\nParis;-3\n")))
	require.Equal(t, 2, table.Len())

	paris, ok := table.Get("Paris")
	require.True(t, ok)
	assert.Equal(t, Aggregate{Min: -3, Max: 20, Sum: 27, Count: 3}, paris)

	london, ok := table.Get("London")
	require.True(t, ok)
	assert.Equal(t, Aggregate{Min: 5.5, Max: 5.5, Sum: 5.5, Count: 1}, london)

	_, ok = table.Get("Oslo")
	assert.False(t, ok)
}

func TestFoldDoesNotAliasInput(t *testing.T) {
	chunk := []byte("Oslo;1\n")
	table := Fold(Records(chunk))
	copy(chunk, "Lima")
	assert.Equal(t, []string{"Oslo"}, table.Keys())
}

func TestAggregateMerge(t *testing.T) {
	a := Aggregate{Min: 1, Max: 5, Sum: 6, Count: 2}
	b := Aggregate{Min: -2, Max: 3, Sum: 1, Count: 2}

	want := Aggregate{Min: -2, Max: 5, Sum: 7, Count: 4}
	assert.Equal(t, want, a.Merge(b))
	assert.Equal(t, want, b.Merge(a))
	assert.Equal(t, Aggregate{Min: 1, Max: 5, Sum: 6, Count: 2}, a)
}

func TestMerge(t *testing.T) {
	a := Fold(Records([]byte("x;1\ny;2\n")))
	b := Fold(Records([]byte("y;-4\nz;9\nz;1\n")))

	got := Merge(a, b)
	assert.Equal(t, []string{"x", "y", "z"}, got.Keys())

	y, _ := got.Get("y")
	assert.Equal(t, Aggregate{Min: -4, Max: 2, Sum: -2, Count: 2}, y)
	z, _ := got.Get("z")
	assert.Equal(t, Aggregate{Min: 1, Max: 9, Sum: 10, Count: 2}, z)
}

func TestMergeCommutes(t *testing.T) {
	input := []string{"a;1\nb;2\n", "b;7\nc;3\n", "a;-1\nc;0.5\n"}
	tables := func() []*Table {
		out := make([]*Table, len(input))
		for i, s := range input {
			out[i] = Fold(Records([]byte(s)))
		}
		return out
	}

	t1 := tables()
	left := Merge(Merge(t1[0], t1[1]), t1[2])
	t2 := tables()
	right := Merge(t2[2], Merge(t2[1], t2[0]))
	t3 := tables()
	tree := Reduce(t3)

	assert.Equal(t, snapshot(left), snapshot(right))
	assert.Equal(t, snapshot(left), snapshot(tree))
}

func TestReduce(t *testing.T) {
	assert.Equal(t, 0, Reduce(nil).Len())

	single := Fold(Records([]byte("a;1\n")))
	assert.Same(t, single, Reduce([]*Table{single}))

	var tables []*Table
	for i := 0; i < 5; i++ {
		tables = append(tables, Fold(Records([]byte("k;1\n"))))
	}
	k, ok := Reduce(tables).Get("k")
	require.True(t, ok)
	assert.Equal(t, uint64(5), k.Count)
}

func snapshot(t *Table) map[string]Aggregate {
	out := make(map[string]Aggregate, t.Len())
	t.Each(func(key string, agg Aggregate) {
		out[key] = agg
	})
	return out
}
