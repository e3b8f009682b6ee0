package intcomp

// trieNode is one node of the count-node trie (spec §4.7 step 1): the
// path from the root to this node is an observed window of the input
// integer stream, and count is how many times that exact window occurred.
type trieNode struct {
	children map[int64]*trieNode
	count    int
	path     []int64
}

// Trie is a prefix tree over integer windows up to PatternLengthLimit long.
type Trie struct {
	root *trieNode
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &trieNode{children: map[int64]*trieNode{}}}
}

// Scan counts every window of length 1..maxLen ending at each position of
// stream (spec §4.7 step 1): "for window lengths 1…L, look up or insert a
// node representing the sequence ending there and increment its count".
func (t *Trie) Scan(stream []int64, maxLen int) {
	if maxLen <= 0 {
		maxLen = 1
	}
	for i := range stream {
		node := t.root
		limit := maxLen
		if i+limit > len(stream) {
			limit = len(stream) - i
		}
		for l := 0; l < limit; l++ {
			v := stream[i+l]
			child, ok := node.children[v]
			if !ok {
				path := make([]int64, len(node.path)+1)
				copy(path, node.path)
				path[len(node.path)] = v
				child = &trieNode{children: map[int64]*trieNode{}, path: path}
				node.children[v] = child
			}
			child.count++
			node = child
		}
	}
}

// weight computes spec §4.7 step 2's count*path_length, with a penalty for
// singleton one-element windows below SmallValueCutoff (these are usually
// not worth abbreviating on their own).
func weight(n *trieNode, flags Flags) int64 {
	w := int64(n.count) * int64(len(n.path))
	if n.count <= 1 && len(n.path) == 1 && n.path[0] < flags.SmallValueCutoff {
		w /= 2
	}
	return w
}

// Collect gathers every top-level (depth-1) node plus any deeper node
// meeting both the count and weight cutoffs (spec §4.7 step 3).
func Collect(t *Trie, flags Flags) []*Candidate {
	var out []*Candidate
	var walk func(n *trieNode, depth int)
	walk = func(n *trieNode, depth int) {
		for _, c := range n.children {
			w := weight(c, flags)
			if depth == 0 || (int64(c.count) >= flags.CountCutoff && w >= flags.WeightCutoff) {
				out = append(out, &Candidate{Path: c.path, Count: c.count, Weight: w})
			}
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
	return out
}
