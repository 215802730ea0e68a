package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgmatch/rgmatch/internal/genemodel"
)

func sampleIndex() map[string]*genemodel.GeneIndex {
	tr := genemodel.NewTranscript("ENST1", "ENSG1", "chr1", genemodel.Positive,
		[]genemodel.Exon{{Start: 1000, End: 1200}, {Start: 3000, End: 3400}})
	g := genemodel.NewGene("ENSG1", "chr1", genemodel.Positive, map[string]*genemodel.Transcript{tr.ID: tr})
	return map[string]*genemodel.GeneIndex{
		"chr1": genemodel.NewGeneIndex([]*genemodel.Gene{g}),
	}
}

func TestSnapshot_WriteThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshot(dir)

	gtfPath := filepath.Join(dir, "source.gtf")
	require.NoError(t, os.WriteFile(gtfPath, []byte("data"), 0644))
	fp, err := StatFile(gtfPath)
	require.NoError(t, err)

	idx := sampleIndex()
	require.NoError(t, s.Write(idx, fp, "gene_id_tag=gene_id;transcript_id_tag=transcript_id"))

	assert.True(t, s.Valid(fp, "gene_id_tag=gene_id;transcript_id_tag=transcript_id"),
		"expected the snapshot to be valid against the fingerprint it was written with")

	loaded, err := s.Load()
	require.NoError(t, err)
	gi, ok := loaded["chr1"]
	require.True(t, ok)
	require.Len(t, gi.Genes, 1)
	assert.Equal(t, "ENSG1", gi.Genes[0].ID)

	// Window must work on the reloaded index: proves the prefix-max array
	// was correctly recomputed rather than silently left nil after gob
	// decoding (GeneIndex.maxEnd is unexported and never serialized).
	got := gi.Window(1100, 1100, 100)
	assert.Len(t, got, 1)
}

func TestSnapshot_Valid_FalseWhenConfigKeyDiffers(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshot(dir)
	gtfPath := filepath.Join(dir, "source.gtf")
	os.WriteFile(gtfPath, []byte("data"), 0644)
	fp, _ := StatFile(gtfPath)

	require.NoError(t, s.Write(sampleIndex(), fp, "key-a"))
	assert.False(t, s.Valid(fp, "key-b"), "expected Valid to be false when the config key differs")
}

func TestSnapshot_Valid_FalseWhenGTFChanges(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshot(dir)
	gtfPath := filepath.Join(dir, "source.gtf")
	os.WriteFile(gtfPath, []byte("data"), 0644)
	fp, _ := StatFile(gtfPath)
	s.Write(sampleIndex(), fp, "key")

	os.WriteFile(gtfPath, []byte("changed data, different size"), 0644)
	fp2, _ := StatFile(gtfPath)
	assert.False(t, s.Valid(fp2, "key"), "expected Valid to be false once the source GTF's size/modtime changed")
}

func TestSnapshot_Valid_FalseWhenNoSnapshotExists(t *testing.T) {
	s := NewSnapshot(t.TempDir())
	assert.False(t, s.Valid(FileFingerprint{Path: "x"}, "key"), "expected Valid to be false with nothing written yet")
}

func TestSnapshot_Clear(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshot(dir)
	gtfPath := filepath.Join(dir, "source.gtf")
	os.WriteFile(gtfPath, []byte("data"), 0644)
	fp, _ := StatFile(gtfPath)
	s.Write(sampleIndex(), fp, "key")

	s.Clear()
	assert.False(t, s.Valid(fp, "key"), "expected Valid to be false after Clear")
	_, err := os.Stat(s.gobPath())
	assert.True(t, os.IsNotExist(err), "expected genes.gob to be removed by Clear")
}
