package stats

import (
	"iter"
	"slices"

	"github.com/dolthub/swiss"
)

// Aggregate is the running summary of one key.
type Aggregate struct {
	Min   float64
	Max   float64
	Sum   float64
	Count uint64
}

func NewAggregate(value float64) Aggregate {
	return Aggregate{
		Min:   value,
		Max:   value,
		Sum:   value,
		Count: 1,
	}
}

func (a *Aggregate) Add(value float64) {
	a.Sum += value
	a.Count++
	if a.Min > value {
		a.Min = value
	}
	if a.Max < value {
		a.Max = value
	}
}

// Merge returns the combination of a and other; neither is modified.
func (a Aggregate) Merge(other Aggregate) Aggregate {
	return Aggregate{
		Min:   min(a.Min, other.Min),
		Max:   max(a.Max, other.Max),
		Sum:   a.Sum + other.Sum,
		Count: a.Count + other.Count,
	}
}

func (a Aggregate) Mean() float64 {
	return a.Sum / float64(a.Count)
}

const defaultTableSize = 1000

// Table maps keys to their aggregates. A key is present only once it has been
// observed, so every stored Aggregate has Count >= 1. A Table is owned by a
// single goroutine.
type Table struct {
	m *swiss.Map[string, *Aggregate]
}

func NewTable() *Table {
	return &Table{
		m: swiss.NewMap[string, *Aggregate](defaultTableSize),
	}
}

func (t *Table) Update(key []byte, value float64) {
	name := string(key)
	if agg, ok := t.m.Get(name); ok {
		agg.Add(value)
		return
	}
	agg := NewAggregate(value)
	t.m.Put(name, &agg)
}

func (t *Table) Get(key string) (Aggregate, bool) {
	agg, ok := t.m.Get(key)
	if !ok {
		return Aggregate{}, false
	}
	return *agg, true
}

func (t *Table) Len() int {
	return t.m.Count()
}

// Keys returns the keys in ascending byte order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.m.Count())
	t.m.Iter(func(k string, _ *Aggregate) bool {
		keys = append(keys, k)
		return false
	})
	slices.Sort(keys)
	return keys
}

// Each visits the entries in ascending key order.
func (t *Table) Each(fn func(key string, agg Aggregate)) {
	for _, k := range t.Keys() {
		agg, _ := t.m.Get(k)
		fn(k, *agg)
	}
}

// Fold aggregates every record of seq into a new Table.
func Fold(seq iter.Seq2[[]byte, float64]) *Table {
	t := NewTable()
	for key, value := range seq {
		t.Update(key, value)
	}
	return t
}

// Merge combines a and b and returns the result. Both inputs are consumed:
// the result may share storage with either, so callers must not use a or b
// afterwards.
func Merge(a, b *Table) *Table {
	if a.Len() < b.Len() {
		a, b = b, a
	}
	b.m.Iter(func(name string, other *Aggregate) bool {
		if mine, ok := a.m.Get(name); ok {
			merged := mine.Merge(*other)
			a.m.Put(name, &merged)
		} else {
			a.m.Put(name, other)
		}
		return false
	})
	return a
}

// Reduce merges tables pairwise, halving the list on every round.
func Reduce(tables []*Table) *Table {
	if len(tables) == 0 {
		return NewTable()
	}
	for len(tables) > 1 {
		next := tables[:0:0]
		for i := 0; i < len(tables); i += 2 {
			if i+1 == len(tables) {
				next = append(next, tables[i])
				break
			}
			next = append(next, Merge(tables[i], tables[i+1]))
		}
		tables = next
	}
	return tables[0]
}
