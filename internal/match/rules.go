package match

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rgmatch/rgmatch/internal/region"
)

// priorityArea maps Exon to FirstExon for priority comparisons only: the two
// areas rank equally but Exon keeps its own output label (spec.md §4.4).
func priorityArea(a region.Area) region.Area {
	if a == region.AreaExon {
		return region.AreaFirstExon
	}
	return a
}

// shouldDiscard applies the spec.md §4.4 step 2 threshold filter: exon-like
// candidates are judged on pctg_area, proximity candidates on pctg_region,
// everything else (Intron, GeneBody) always survives.
func shouldDiscard(c region.Candidate, cfg region.Config) bool {
	switch {
	case c.Area.IsExonLike():
		return c.PctgArea < cfg.PercArea
	case c.Area.IsProximity():
		return c.PctgRegion < cfg.PercRegion
	default:
		return false
	}
}

func groupKey(c region.Candidate, level region.ReportLevel) string {
	switch level {
	case region.LevelGene:
		return c.GeneID
	case region.LevelTranscript:
		return c.GeneID + "\x00" + c.TranscriptID
	default:
		return c.GeneID + "\x00" + c.TranscriptID + "\x00" + strconv.Itoa(c.ExonNumber) + "\x00" + c.Area.String()
	}
}

// less reports whether a ranks strictly ahead of b under the spec.md §4.4
// tie-break chain: rule priority, then pctg_region, then pctg_area, then
// distance, then a deterministic (gene_id, transcript_id, exon_number) key.
func less(a, b region.Candidate, cfg region.Config) bool {
	pa, pb := cfg.RulePriority(priorityArea(a.Area)), cfg.RulePriority(priorityArea(b.Area))
	if pa != pb {
		return pa < pb
	}
	if a.PctgRegion != b.PctgRegion {
		return a.PctgRegion > b.PctgRegion
	}
	if a.PctgArea != b.PctgArea {
		return a.PctgArea > b.PctgArea
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.GeneID != b.GeneID {
		return a.GeneID < b.GeneID
	}
	if a.TranscriptID != b.TranscriptID {
		return a.TranscriptID < b.TranscriptID
	}
	return a.ExonNumber < b.ExonNumber
}

// SelectTranscript picks the single best candidate out of a group of
// candidates that all collapse to the same report-level key, using the
// spec.md §4.4 tie-break chain.
func SelectTranscript(group []region.Candidate, cfg region.Config) region.Candidate {
	best := group[0]
	for _, c := range group[1:] {
		if less(c, best, cfg) {
			best = c
		}
	}
	return best
}

func unionExonNumbers(group []region.Candidate) string {
	seen := map[int]bool{}
	var nums []int
	for _, c := range group {
		if c.ExonNumber <= 0 || seen[c.ExonNumber] {
			continue
		}
		seen[c.ExonNumber] = true
		nums = append(nums, c.ExonNumber)
	}
	sort.Ints(nums)
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ApplyRules runs the spec.md §4.4 rule engine over every candidate the
// matcher produced for one region: filter by threshold, group by the
// configured report level, and collapse each group to one representative
// row carrying the union of its members' exon numbers.
func ApplyRules(cands []region.Candidate, cfg region.Config) []region.Candidate {
	filtered := make([]region.Candidate, 0, len(cands))
	for _, c := range cands {
		if !shouldDiscard(c, cfg) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	groups := map[string][]region.Candidate{}
	var order []string
	for _, c := range filtered {
		k := groupKey(c, cfg.Level)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}
	sort.Strings(order)

	out := make([]region.Candidate, 0, len(order))
	for _, k := range order {
		grp := groups[k]
		rep := SelectTranscript(grp, cfg)
		if cfg.Level != region.LevelExon {
			rep.ExonNumberList = unionExonNumbers(grp)
		} else if rep.ExonNumber > 0 {
			rep.ExonNumberList = strconv.Itoa(rep.ExonNumber)
		}
		out = append(out, rep)
	}
	return out
}
