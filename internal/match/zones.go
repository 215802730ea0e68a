package match

import (
	"github.com/rgmatch/rgmatch/internal/genemodel"
	"github.com/rgmatch/rgmatch/internal/region"
)

// zoneSpec is one labeled sub-zone of a TSS/TTS split: [lo, hi] in genomic
// coordinates, with zoneWidth the full (possibly un-clamped) width used as
// the pctg_area denominator.
type zoneSpec struct {
	area      region.Area
	lo, hi    int64
	zoneWidth int64
}

// TSSCheck splits a region's overlap with the upstream side of a
// transcript's first exon into TSS/PROMOTER/UPSTREAM sub-candidates
// (spec.md §4.1). overlapsExon indicates whether the caller already knows
// this region intersects the anchor exon itself (distance is then 0);
// otherwise distance is the region-midpoint-to-TSS distance.
func TSSCheck(rgn *region.Region, t *genemodel.Transcript, cfg region.Config, overlapsExon bool) []region.Candidate {
	anchor := t.Exons[t.FirstExonIndex()]
	b := t.TSSBoundary()
	budget := cfg.DistanceBp()

	var zones []zoneSpec
	if t.Strand.IsForward() {
		tssLo, tssHi := b-cfg.TSS, b-1
		promLo, promHi := b-cfg.TSS-cfg.Promoter, b-cfg.TSS-1
		upHi := b - cfg.TSS - cfg.Promoter - 1
		upLo := b - budget
		zones = []zoneSpec{
			{region.AreaTSS, tssLo, tssHi, cfg.TSS},
			{region.AreaPromoter, promLo, promHi, cfg.Promoter},
			{region.AreaUpstream, upLo, upHi, budget - cfg.TSS - cfg.Promoter},
		}
	} else {
		tssLo, tssHi := b+1, b+cfg.TSS
		promLo, promHi := b+cfg.TSS+1, b+cfg.TSS+cfg.Promoter
		upLo := b + cfg.TSS + cfg.Promoter + 1
		upHi := b + budget
		zones = []zoneSpec{
			{region.AreaTSS, tssLo, tssHi, cfg.TSS},
			{region.AreaPromoter, promLo, promHi, cfg.Promoter},
			{region.AreaUpstream, upLo, upHi, budget - cfg.TSS - cfg.Promoter},
		}
	}

	return splitIntoCandidates(rgn, t, zones, anchor, b, overlapsExon)
}

// TTSCheck splits a region's overlap with the downstream side of a
// transcript's last exon into TTS/DOWNSTREAM sub-candidates (spec.md §4.2).
// When cfg.TTS is 0 the TTS zone is skipped entirely, per spec.
func TTSCheck(rgn *region.Region, t *genemodel.Transcript, cfg region.Config, overlapsExon bool) []region.Candidate {
	anchor := t.Exons[t.LastExonIndex()]
	b := t.TTSBoundary()
	budget := cfg.DistanceBp()

	var zones []zoneSpec
	if t.Strand.IsForward() {
		if cfg.TTS > 0 {
			zones = append(zones, zoneSpec{region.AreaTTS, b + 1, b + cfg.TTS, cfg.TTS})
		}
		zones = append(zones, zoneSpec{region.AreaDownstream, b + cfg.TTS + 1, b + budget, budget - cfg.TTS})
	} else {
		if cfg.TTS > 0 {
			zones = append(zones, zoneSpec{region.AreaTTS, b - cfg.TTS, b - 1, cfg.TTS})
		}
		zones = append(zones, zoneSpec{region.AreaDownstream, b - budget, b - cfg.TTS - 1, budget - cfg.TTS})
	}

	return splitIntoCandidates(rgn, t, zones, anchor, b, overlapsExon)
}

func splitIntoCandidates(rgn *region.Region, t *genemodel.Transcript, zones []zoneSpec, anchor genemodel.Exon, b int64, overlapsExon bool) []region.Candidate {
	regionLen := rgn.Len()
	if regionLen <= 0 {
		return nil
	}

	tssDistance := signedTSSDistance(rgn, t, b)

	var distance int64
	if !overlapsExon {
		distance = absInt64(rgn.Midpoint() - b)
	}

	var out []region.Candidate
	for _, z := range zones {
		if z.zoneWidth <= 0 {
			continue
		}
		is, ie, ok := intersect(z.lo, z.hi, rgn.Start, rgn.End)
		if !ok {
			continue
		}
		covered := ie - is + 1
		out = append(out, region.Candidate{
			ExonStart:    anchor.Start,
			ExonEnd:      anchor.End,
			Strand:       t.Strand.String(),
			ExonNumber:   anchor.ExonNumber,
			Area:         z.area,
			TranscriptID: t.ID,
			GeneID:       t.GeneID,
			Distance:     distance,
			PctgRegion:   100 * float64(covered) / float64(regionLen),
			PctgArea:     100 * float64(covered) / float64(z.zoneWidth),
			TSSDistance:  tssDistance,
		})
	}
	return out
}

// signedTSSDistance returns the signed distance from the region midpoint to
// the transcript's TSS boundary b: negative upstream, positive downstream
// relative to the gene's own transcriptional direction (spec.md §9 Open
// Question, resolved in DESIGN.md / SPEC_FULL.md §3).
func signedTSSDistance(rgn *region.Region, t *genemodel.Transcript, b int64) int64 {
	mid := rgn.Midpoint()
	if t.Strand.IsForward() {
		return mid - b
	}
	return b - mid
}

func intersect(aLo, aHi, bLo, bHi int64) (lo, hi int64, ok bool) {
	lo = max64(aLo, bLo)
	hi = min64(aHi, bHi)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
