package match

import (
	"context"
	"strings"

	"github.com/rgmatch/rgmatch/internal/genemodel"
	"github.com/rgmatch/rgmatch/internal/region"
)

// Driver holds the per-chromosome gene indexes and runs the binary-search
// windowed match described in spec.md §4.5: for each region it narrows the
// gene search to a small window around the region via GeneIndex.Window, then
// runs every candidate transcript through MatchTranscript and ApplyRules.
type Driver struct {
	cfg            region.Config
	index          map[string]*genemodel.GeneIndex
	normalizeChrom bool
}

// NewDriver builds a Driver over a parsed GTF gene index. When
// normalizeChrom is set, a region's chromosome is also tried with its "chr"
// prefix stripped if the exact name isn't present in the index.
func NewDriver(index map[string]*genemodel.GeneIndex, cfg region.Config, normalizeChrom bool) *Driver {
	return &Driver{cfg: cfg, index: index, normalizeChrom: normalizeChrom}
}

func stripChr(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}

func (d *Driver) lookupChrom(chrom string) (*genemodel.GeneIndex, bool) {
	if idx, ok := d.index[chrom]; ok {
		return idx, true
	}
	if d.normalizeChrom {
		if idx, ok := d.index[stripChr(chrom)]; ok {
			return idx, true
		}
		if idx, ok := d.index["chr"+chrom]; ok {
			return idx, true
		}
	}
	return nil, false
}

// MatchRegion runs the full windowed match-and-collapse pipeline for one
// region and is safe to call concurrently from multiple goroutines sharing
// the same Driver, since all mutable state (the Matcher) is local to the
// call.
func (d *Driver) MatchRegion(rgn *region.Region) []region.Candidate {
	idx, ok := d.lookupChrom(rgn.Chrom)
	if !ok {
		return nil
	}

	lookback := d.cfg.MaxLookback()
	genes := idx.Window(rgn.Start, rgn.End, lookback)
	if len(genes) == 0 {
		return nil
	}

	// One Matcher spans the whole region scan (every gene in the window),
	// not one per gene: the up/down proximity slots track the single
	// closest upstream/downstream candidate across the entire window
	// (spec.md §9), and the legacy compat flag's slot-clearing only makes
	// sense against that shared, region-wide state.
	m := NewMatcher(d.cfg)
	var all []region.Candidate
	for _, g := range genes {
		for _, t := range g.Transcripts {
			all = append(all, m.MatchTranscript(rgn, t)...)
		}
	}
	all = append(all, m.FlushProximity()...)

	return ApplyRules(all, d.cfg)
}

// MatchRegionsToGenes is the sequential reference driver loop: it runs
// MatchRegion over every region in order, preserving input order in the
// output (spec.md §8 property 4). cmd/rgmatch drives the concurrent version
// through internal/worker.Pool, which calls MatchRegion per region from
// multiple workers and reassembles results in the same input order.
func (d *Driver) MatchRegionsToGenes(ctx context.Context, regions []*region.Region) ([][]region.Candidate, error) {
	out := make([][]region.Candidate, len(regions))
	for i, rgn := range regions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out[i] = d.MatchRegion(rgn)
	}
	return out, nil
}
