// Package ted computes the tolerant edit distance between a ground-truth
// segmentation volume and a candidate reconstruction. Voxels near label
// boundaries may be relabeled within a physical distance budget; the
// relabeling minimizing the number of split and merge errors is found by
// solving an integer linear program.
package ted

import "sort"

// Label is an interned label identifier. Input volumes carry float64
// label values; each distinct value is mapped once to a dense Label so
// that later stages never compare floats for identity. IDs are assigned
// in ascending value order, so sorting Labels sorts the underlying
// values.
type Label int

// LabelTable is the one-time mapping between raw float labels and
// interned Labels.
type LabelTable struct {
	values []float64
	ids    map[float64]Label
}

// newLabelTable interns the given set of distinct label values.
func newLabelTable(distinct map[float64]struct{}) *LabelTable {
	values := make([]float64, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Float64s(values)

	ids := make(map[float64]Label, len(values))
	for i, v := range values {
		ids[v] = Label(i)
	}
	return &LabelTable{values: values, ids: ids}
}

// ID returns the interned Label of a raw value.
func (t *LabelTable) ID(value float64) (Label, bool) {
	id, ok := t.ids[value]
	return id, ok
}

// Value returns the raw float label of an interned Label.
func (t *LabelTable) Value(id Label) float64 {
	return t.values[id]
}

// Len returns the number of distinct labels.
func (t *LabelTable) Len() int {
	return len(t.values)
}

// Labels returns all interned labels in ascending value order.
func (t *LabelTable) Labels() []Label {
	labels := make([]Label, len(t.values))
	for i := range labels {
		labels[i] = Label(i)
	}
	return labels
}
