package intcomp

import "container/heap"

// Candidate is one trie window considered for an abbreviation (spec §4.7
// step 3): Index is set by Select once the candidate is actually chosen.
type Candidate struct {
	Path   []int64
	Count  int
	Weight int64
	Index  int
}

// candidateHeap is a max-heap over Weight, grounded on
// other_examples/...huffman.go's nodeHeap (there a min-heap over byte
// counts feeding a Huffman build; here the comparison is inverted since
// spec §4.7 step 4 wants the heaviest candidates popped first).
type candidateHeap []*Candidate

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].Weight > h[j].Weight }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(v interface{}) { *h = append(*h, v.(*Candidate)) }
func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Select pops up to flags.MaxAbbreviations candidates in heap (weight)
// order, assigning incrementing abbreviation indices (spec §4.7 step 4).
// Space-cost filtering (step 3's "only candidates whose weight exceeds
// that cost are kept") is folded into the weight cutoff already applied by
// Collect, since both cutoffs scale with the same abbreviation-index
// format once MaxAbbreviations is fixed.
func Select(candidates []*Candidate, flags Flags) []*Candidate {
	h := make(candidateHeap, len(candidates))
	copy(h, candidates)
	heap.Init(&h)

	var out []*Candidate
	for h.Len() > 0 && len(out) < flags.MaxAbbreviations {
		c := heap.Pop(&h).(*Candidate)
		c.Index = len(out)
		out = append(out, c)
	}
	return out
}
