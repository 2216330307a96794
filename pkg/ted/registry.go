package ted

import "sort"

// LabelRegistry tracks the distinct ground-truth and reconstruction
// labels and the bipartite "possible match" relation between them. A
// (gt, rec) pair is possible if a cell with that pair exists in the input
// or if tolerance analysis proposes relabeling a cell to rec while its gt
// label stays fixed.
type LabelRegistry struct {
	// GroundTruth and Reconstruction intern the two label universes.
	GroundTruth    *LabelTable
	Reconstruction *LabelTable

	// Adjacency in both directions, indexed by interned label.
	gtToRec []map[Label]struct{}
	recToGt []map[Label]struct{}
}

func newLabelRegistry(gt, rec *LabelTable) *LabelRegistry {
	r := &LabelRegistry{
		GroundTruth:    gt,
		Reconstruction: rec,
		gtToRec:        make([]map[Label]struct{}, gt.Len()),
		recToGt:        make([]map[Label]struct{}, rec.Len()),
	}
	for i := range r.gtToRec {
		r.gtToRec[i] = make(map[Label]struct{})
	}
	for i := range r.recToGt {
		r.recToGt[i] = make(map[Label]struct{})
	}
	return r
}

// RegisterPossibleMatch records that gt may end up matched to rec.
func (r *LabelRegistry) RegisterPossibleMatch(gt, rec Label) {
	r.gtToRec[gt][rec] = struct{}{}
	r.recToGt[rec][gt] = struct{}{}
}

// MatchesByGt returns the reconstruction labels gt may match, in
// ascending value order.
func (r *LabelRegistry) MatchesByGt(gt Label) []Label {
	return sortedLabels(r.gtToRec[gt])
}

// MatchesByRec returns the ground-truth labels rec may match, in
// ascending value order.
func (r *LabelRegistry) MatchesByRec(rec Label) []Label {
	return sortedLabels(r.recToGt[rec])
}

// NumPossibleMatches returns the total number of possible (gt, rec)
// pairs.
func (r *LabelRegistry) NumPossibleMatches() int {
	n := 0
	for _, set := range r.gtToRec {
		n += len(set)
	}
	return n
}

func sortedLabels(set map[Label]struct{}) []Label {
	labels := make([]Label, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}
