package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgmatch/rgmatch/internal/genemodel"
	"github.com/rgmatch/rgmatch/internal/region"
)

func findArea(cands []region.Candidate, a region.Area) *region.Candidate {
	for i := range cands {
		if cands[i].Area == a {
			return &cands[i]
		}
	}
	return nil
}

// S2 — TSS proximity, forward strand.
func TestTSSCheck_ForwardStrandProximity(t *testing.T) {
	cfg := region.DefaultConfig()
	tr := genemodel.NewTranscript("ENST1", "ENSG1", "chr1", genemodel.Positive,
		[]genemodel.Exon{{Start: 1000, End: 1200}})
	rgn := &region.Region{Chrom: "chr1", Start: 800, End: 900}

	cands := TSSCheck(rgn, tr, cfg, false)

	tss := findArea(cands, region.AreaTSS)
	require.NotNil(t, tss, "no TSS candidate among %+v", cands)
	assert.Equal(t, int64(150), tss.Distance)
	assert.Equal(t, 100.0, tss.PctgRegion)
}

// S3 — TSS proximity, reverse strand; anchor is the exon's End (b=1200).
func TestTSSCheck_ReverseStrandProximity(t *testing.T) {
	cfg := region.DefaultConfig()
	tr := genemodel.NewTranscript("ENST1", "ENSG1", "chr1", genemodel.Negative,
		[]genemodel.Exon{{Start: 1000, End: 1200}})
	rgn := &region.Region{Chrom: "chr1", Start: 1300, End: 1400}

	require.Equal(t, int64(1200), tr.TSSBoundary())

	cands := TSSCheck(rgn, tr, cfg, false)

	tss := findArea(cands, region.AreaTSS)
	require.NotNil(t, tss, "no TSS candidate among %+v", cands)
	assert.Equal(t, int64(150), tss.Distance)
	assert.Equal(t, 100.0, tss.PctgRegion)
}

func TestTTSCheck_SkipsZeroWidthTTSZone(t *testing.T) {
	cfg := region.DefaultConfig() // TTS defaults to 0
	tr := genemodel.NewTranscript("ENST1", "ENSG1", "chr1", genemodel.Positive,
		[]genemodel.Exon{{Start: 1000, End: 1200}})
	rgn := &region.Region{Chrom: "chr1", Start: 1201, End: 1250}

	cands := TTSCheck(rgn, tr, cfg, false)
	assert.Nil(t, findArea(cands, region.AreaTTS), "expected no TTS-zone candidate when cfg.TTS == 0")
	assert.NotEmpty(t, cands, "expected a DOWNSTREAM candidate")
}

func TestTTSCheck_EmitsTTSZoneWhenConfigured(t *testing.T) {
	cfg := region.DefaultConfig()
	cfg.TTS = 100
	tr := genemodel.NewTranscript("ENST1", "ENSG1", "chr1", genemodel.Positive,
		[]genemodel.Exon{{Start: 1000, End: 1200}})
	rgn := &region.Region{Chrom: "chr1", Start: 1210, End: 1220}

	cands := TTSCheck(rgn, tr, cfg, false)
	tts := findArea(cands, region.AreaTTS)
	require.NotNil(t, tts, "expected a TTS candidate among %+v", cands)
	assert.Equal(t, 100.0, tts.PctgRegion)
}

func TestSignedTSSDistance_ForwardVsReverse(t *testing.T) {
	forward := genemodel.NewTranscript("ENST1", "ENSG1", "chr1", genemodel.Positive,
		[]genemodel.Exon{{Start: 1000, End: 1200}})
	reverse := genemodel.NewTranscript("ENST2", "ENSG1", "chr1", genemodel.Negative,
		[]genemodel.Exon{{Start: 1000, End: 1200}})

	rgnUpstreamOfForward := &region.Region{Chrom: "chr1", Start: 800, End: 900}
	assert.Negative(t, signedTSSDistance(rgnUpstreamOfForward, forward, forward.TSSBoundary()))

	rgnUpstreamOfReverse := &region.Region{Chrom: "chr1", Start: 1300, End: 1400}
	assert.Negative(t, signedTSSDistance(rgnUpstreamOfReverse, reverse, reverse.TSSBoundary()))
}
