package genemodel

import "sort"

// Transcript is a single gene isoform: an ordered sequence of exons plus the
// strand and boundary invariants spec.md §3 requires.
type Transcript struct {
	ID          string
	GeneID      string
	Chrom       string
	Start       int64 // min(exon.Start)
	End         int64 // max(exon.End)
	Strand      Strand
	Exons       []Exon // sorted ascending by Start regardless of strand
	IsCanonical bool   // from GTF "tag" attribute; stored and cached, not read by the matcher or rule engine
}

// NewTranscript builds a transcript from unordered exon boundaries, assigning
// exon numbers in biological order (ascending start on +, descending start on
// -) while keeping Exons sorted ascending by genomic Start, and deriving
// Start/End from the exon set.
func NewTranscript(id, geneID, chrom string, strand Strand, exons []Exon) *Transcript {
	sorted := make([]Exon, len(exons))
	copy(sorted, exons)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	if strand.IsForward() {
		for i := range sorted {
			sorted[i].ExonNumber = i + 1
		}
	} else {
		n := len(sorted)
		for i := range sorted {
			sorted[i].ExonNumber = n - i
		}
	}

	t := &Transcript{
		ID:     id,
		GeneID: geneID,
		Chrom:  chrom,
		Strand: strand,
		Exons:  sorted,
	}
	if len(sorted) > 0 {
		t.Start = sorted[0].Start
		end := sorted[0].End
		for _, e := range sorted[1:] {
			if e.End > end {
				end = e.End
			}
		}
		t.End = end
	}
	return t
}

// FirstExonIndex returns the index into Exons of the biological first exon:
// lowest-start on +, highest-start (= last in the Start-sorted slice) on -.
func (t *Transcript) FirstExonIndex() int {
	if t.Strand.IsForward() {
		return 0
	}
	return len(t.Exons) - 1
}

// LastExonIndex returns the index into Exons of the biological last exon,
// the mirror of FirstExonIndex.
func (t *Transcript) LastExonIndex() int {
	if t.Strand.IsForward() {
		return len(t.Exons) - 1
	}
	return 0
}

// TSSBoundary returns the genomic coordinate of the transcription start
// site: the first exon's Start on +, its End on -.
func (t *Transcript) TSSBoundary() int64 {
	e := t.Exons[t.FirstExonIndex()]
	if t.Strand.IsForward() {
		return e.Start
	}
	return e.End
}

// TTSBoundary returns the genomic coordinate of the transcription
// termination site: the last exon's End on +, its Start on -.
func (t *Transcript) TTSBoundary() int64 {
	e := t.Exons[t.LastExonIndex()]
	if t.Strand.IsForward() {
		return e.End
	}
	return e.Start
}
