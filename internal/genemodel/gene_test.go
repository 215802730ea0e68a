package genemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGene_DerivesBoundaryFromTranscripts(t *testing.T) {
	t1 := NewTranscript("ENST1", "ENSG1", "chr1", Positive, []Exon{{Start: 1000, End: 1200}})
	t2 := NewTranscript("ENST2", "ENSG1", "chr1", Positive, []Exon{{Start: 500, End: 700}, {Start: 2000, End: 2500}})

	g := NewGene("ENSG1", "chr1", Positive, map[string]*Transcript{t1.ID: t1, t2.ID: t2})

	assert.Equal(t, int64(500), g.Start, "min across transcripts")
	assert.Equal(t, int64(2500), g.End, "max across transcripts")
	assert.Equal(t, int64(2001), g.Size())
}

func TestNewGene_SingleTranscript(t *testing.T) {
	tr := NewTranscript("ENST1", "ENSG1", "chr1", Negative, []Exon{{Start: 100, End: 200}})
	g := NewGene("ENSG1", "chr1", Negative, map[string]*Transcript{tr.ID: tr})

	assert.Equal(t, int64(100), g.Start)
	assert.Equal(t, int64(200), g.End)
}
