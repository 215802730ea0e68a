// Package region holds the region-side data model consumed by the matcher:
// Region, Area, Candidate, ReportLevel and Config (spec.md §3).
package region

// Region is a single input interval from a BED file, in the closed 1-based
// coordinate convention (see internal/bed's half-open -> closed conversion).
type Region struct {
	Chrom    string
	Start    int64
	End      int64
	Metadata []string
}

// Len returns the region length in bases.
func (r *Region) Len() int64 {
	return r.End - r.Start + 1
}

// Midpoint returns the integer midpoint of the region, used by the zone
// splitters to compute signed TSS/TTS distances (spec.md §4.1).
func (r *Region) Midpoint() int64 {
	return (r.Start + r.End) / 2
}
