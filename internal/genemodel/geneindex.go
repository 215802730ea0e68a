package genemodel

import "sort"

// GeneIndex holds all genes for one chromosome, sorted ascending by Start,
// plus a prefix-max array of gene ends so Window can prune its reverse scan
// the same way the cache package's interval tree prunes point-containment
// queries, generalized here to windowed range queries (spec.md §4.5).
type GeneIndex struct {
	Genes  []*Gene
	maxEnd []int64 // maxEnd[i] = max(Genes[:i+1].End)
}

// NewGeneIndex builds a GeneIndex from an unordered gene slice.
func NewGeneIndex(genes []*Gene) *GeneIndex {
	sorted := make([]*Gene, len(genes))
	copy(sorted, genes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	idx := &GeneIndex{Genes: sorted}
	if len(sorted) == 0 {
		return idx
	}

	maxEnd := make([]int64, len(sorted))
	maxEnd[0] = sorted[0].End
	for i := 1; i < len(sorted); i++ {
		maxEnd[i] = sorted[i].End
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	idx.maxEnd = maxEnd
	return idx
}

// Window returns every gene whose lookback-expanded span
// [Start-lookback, End+lookback] intersects [rs, re], per spec.md §4.5.
//
// It binary-searches the rightmost gene with Start <= re+lookback, then
// walks backward pruning with the prefix-max End array: once maxEnd[i] (the
// furthest End of any gene at or before i) falls short of rs-lookback, no gene
// before i can possibly reach the region either, so the walk stops there.
func (idx *GeneIndex) Window(rs, re, lookback int64) []*Gene {
	if len(idx.Genes) == 0 {
		return nil
	}

	ceil := re + lookback
	hi := sort.Search(len(idx.Genes), func(i int) bool {
		return idx.Genes[i].Start > ceil
	})

	floor := rs - lookback
	var result []*Gene
	for i := hi - 1; i >= 0; i-- {
		if idx.maxEnd[i]+lookback < floor {
			break
		}
		if idx.Genes[i].End+lookback >= floor {
			result = append(result, idx.Genes[i])
		}
	}

	// Reverse back into ascending Start order, matching input region order
	// downstream expectations (spec.md §8 property 4 concerns output order,
	// not gene scan order, but ascending is the natural/least-surprising one).
	for l, r := 0, len(result)-1; l < r; l, r = l+1, r-1 {
		result[l], result[r] = result[r], result[l]
	}
	return result
}
