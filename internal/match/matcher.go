package match

import (
	"github.com/rgmatch/rgmatch/internal/genemodel"
	"github.com/rgmatch/rgmatch/internal/region"
)

// Matcher carries the two cross-transcript proximity slots (spec.md §9)
// across every transcript of every gene scanned for one region. A fresh
// Matcher (or a Reset one) must be used per region.
type Matcher struct {
	cfg  region.Config
	up   *region.Candidate // closest upstream-of-TSS candidate seen so far
	down *region.Candidate // closest downstream-of-TTS candidate seen so far
}

// NewMatcher returns a Matcher scoped to a single region scan.
func NewMatcher(cfg region.Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// Reset clears both proximity slots, ready for the next region.
func (m *Matcher) Reset() {
	m.up = nil
	m.down = nil
}

// recordProximity keeps the representative candidate from a pure-proximity
// splitter call (case 1/6, no overlap) in the given slot, only overwriting
// it when the new candidate is strictly closer (spec.md §9).
func (m *Matcher) recordProximity(slot **region.Candidate, cands []region.Candidate) {
	if len(cands) == 0 {
		return
	}
	rep := SelectTranscript(cands, m.cfg)
	if *slot == nil || rep.Distance < (*slot).Distance {
		c := rep
		*slot = &c
	}
}

// absorbTail appends an overlap-derived splitter result directly to the
// region's output and, per the configured compat mode, clears the
// corresponding slot rather than leaving a stale, now-superseded proximity
// candidate behind (spec.md §9).
func (m *Matcher) absorbTail(direct *[]region.Candidate, slot **region.Candidate, cands []region.Candidate) {
	if len(cands) == 0 {
		return
	}
	*direct = append(*direct, cands...)
	if m.cfg.Compat == region.CompatLegacy {
		*slot = nil
	}
}

// classify buckets the region [rs,re] against one exon's [start,end] into
// the six geometric cases of spec.md §4.3.
type exonCase int

const (
	caseExonBefore     exonCase = iota // exon.End < rs
	caseExonAfter                      // re < exon.Start
	caseRegionInExon                   // region fully inside exon
	caseExonInRegion                   // exon fully inside region
	caseOverlapRight                   // region starts inside exon, extends past exon end
	caseOverlapLeft                    // region starts before exon, ends inside exon
)

func classify(rs, re int64, e genemodel.Exon) exonCase {
	switch {
	case e.End < rs:
		return caseExonBefore
	case re < e.Start:
		return caseExonAfter
	case rs >= e.Start && re <= e.End:
		return caseRegionInExon
	case rs <= e.Start && re >= e.End:
		return caseExonInRegion
	case re > e.End:
		return caseOverlapRight
	default:
		return caseOverlapLeft
	}
}

func exonArea(e genemodel.Exon) region.Area {
	if e.ExonNumber == 1 {
		return region.AreaFirstExon
	}
	return region.AreaExon
}

// MatchTranscript runs one transcript's exons and introns against rgn and
// returns every direct (overlap, intron, gene-body, and overlap-derived
// proximity tail) candidate to append to the region's output accumulator.
// It also updates the Matcher's up/down proximity slots as a side effect;
// call FlushProximity once after every transcript of the region has run.
func (m *Matcher) MatchTranscript(rgn *region.Region, t *genemodel.Transcript) []region.Candidate {
	rs, re := rgn.Start, rgn.End
	regionLen := rgn.Len()
	n := len(t.Exons)

	var direct []region.Candidate
	exonOverlapped := false
	intronOverlapped := false
	var coveredBases int64

	firstIdx := t.FirstExonIndex()
	lastIdx := t.LastExonIndex()

	for i, e := range t.Exons {
		exonLen := e.Len()
		switch classify(rs, re, e) {

		case caseRegionInExon:
			covered := regionLen
			direct = append(direct, region.Candidate{
				ExonStart: e.Start, ExonEnd: e.End, Strand: t.Strand.String(),
				ExonNumber: e.ExonNumber, Area: exonArea(e),
				TranscriptID: t.ID, GeneID: t.GeneID, Distance: 0,
				PctgRegion: 100, PctgArea: 100 * float64(covered) / float64(exonLen),
			})
			exonOverlapped = true
			coveredBases += covered

		case caseExonInRegion:
			covered := exonLen
			direct = append(direct, region.Candidate{
				ExonStart: e.Start, ExonEnd: e.End, Strand: t.Strand.String(),
				ExonNumber: e.ExonNumber, Area: exonArea(e),
				TranscriptID: t.ID, GeneID: t.GeneID, Distance: 0,
				PctgRegion: 100 * float64(covered) / float64(regionLen), PctgArea: 100,
			})
			exonOverlapped = true
			coveredBases += covered
			if i == firstIdx {
				m.absorbTail(&direct, &m.up, TSSCheck(rgn, t, m.cfg, true))
			}
			if i == lastIdx {
				m.absorbTail(&direct, &m.down, TTSCheck(rgn, t, m.cfg, true))
			}

		case caseOverlapRight:
			covered := e.End - rs + 1
			direct = append(direct, region.Candidate{
				ExonStart: e.Start, ExonEnd: e.End, Strand: t.Strand.String(),
				ExonNumber: e.ExonNumber, Area: exonArea(e),
				TranscriptID: t.ID, GeneID: t.GeneID, Distance: 0,
				PctgRegion: 100 * float64(covered) / float64(regionLen),
				PctgArea:   100 * float64(covered) / float64(exonLen),
			})
			exonOverlapped = true
			coveredBases += covered
			if i == n-1 {
				if t.Strand.IsForward() {
					m.absorbTail(&direct, &m.down, TTSCheck(rgn, t, m.cfg, true))
				} else {
					m.absorbTail(&direct, &m.up, TSSCheck(rgn, t, m.cfg, true))
				}
			}

		case caseOverlapLeft:
			covered := re - e.Start + 1
			direct = append(direct, region.Candidate{
				ExonStart: e.Start, ExonEnd: e.End, Strand: t.Strand.String(),
				ExonNumber: e.ExonNumber, Area: exonArea(e),
				TranscriptID: t.ID, GeneID: t.GeneID, Distance: 0,
				PctgRegion: 100 * float64(covered) / float64(regionLen),
				PctgArea:   100 * float64(covered) / float64(exonLen),
			})
			exonOverlapped = true
			coveredBases += covered
			if i == 0 {
				if t.Strand.IsForward() {
					m.absorbTail(&direct, &m.up, TSSCheck(rgn, t, m.cfg, true))
				} else {
					m.absorbTail(&direct, &m.down, TTSCheck(rgn, t, m.cfg, true))
				}
			}

		case caseExonBefore:
			if i == n-1 {
				if t.Strand.IsForward() {
					m.recordProximity(&m.down, TTSCheck(rgn, t, m.cfg, false))
				} else {
					m.recordProximity(&m.up, TSSCheck(rgn, t, m.cfg, false))
				}
			}

		case caseExonAfter:
			if i == 0 {
				if t.Strand.IsForward() {
					m.recordProximity(&m.up, TSSCheck(rgn, t, m.cfg, false))
				} else {
					m.recordProximity(&m.down, TTSCheck(rgn, t, m.cfg, false))
				}
			}
		}

		if i > 0 {
			prev := t.Exons[i-1]
			intronLo, intronHi := prev.End+1, e.Start-1
			if intronLo <= intronHi {
				if lo, hi, ok := intersect(intronLo, intronHi, rs, re); ok {
					covered := hi - lo + 1
					intronLen := intronHi - intronLo + 1
					direct = append(direct, region.Candidate{
						ExonStart: intronLo, ExonEnd: intronHi, Strand: t.Strand.String(),
						ExonNumber: 0, Area: region.AreaIntron,
						TranscriptID: t.ID, GeneID: t.GeneID, Distance: 0,
						PctgRegion: 100 * float64(covered) / float64(regionLen),
						PctgArea:   100 * float64(covered) / float64(intronLen),
					})
					intronOverlapped = true
					coveredBases += covered
				}
			}
		}
	}

	if exonOverlapped && intronOverlapped {
		geneBodyLen := t.End - t.Start + 1
		direct = append(direct, region.Candidate{
			ExonStart: t.Start, ExonEnd: t.End, Strand: t.Strand.String(),
			ExonNumber: 0, Area: region.AreaGeneBody,
			TranscriptID: t.ID, GeneID: t.GeneID, Distance: 0,
			PctgRegion: 100 * float64(coveredBases) / float64(regionLen),
			PctgArea:   100 * float64(coveredBases) / float64(geneBodyLen),
		})
	}

	return direct
}

// FlushProximity returns the slot candidates accumulated across every
// transcript processed since the last Reset, for appending once per region.
// A slot survives the zone-width clipping done at splitter time but can still
// carry a distance past the distance budget for a region much longer than the
// budget itself (the zone is clipped at its far edge, not at the region's
// midpoint); the explicit bound here is spec.md §4.3's final flush-time check.
func (m *Matcher) FlushProximity() []region.Candidate {
	budget := m.cfg.DistanceBp()
	var out []region.Candidate
	if m.up != nil && m.up.Distance <= budget {
		out = append(out, *m.up)
	}
	if m.down != nil && m.down.Distance <= budget {
		out = append(out, *m.down)
	}
	return out
}
