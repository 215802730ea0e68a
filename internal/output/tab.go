// Package output provides region-annotation output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rgmatch/rgmatch/internal/region"
)

var annotationColumns = []string{
	"AREA", "GENE", "TRANSCRIPT", "EXON_NR", "STRAND",
	"DISTANCE", "TSS_DISTANCE", "PCTG_REGION", "PCTG_AREA",
}

// TabWriter writes region annotations in tab-delimited format: every column
// of the input row followed by the spec.md §5 annotation columns.
type TabWriter struct {
	w           *bufio.Writer
	bedColCount int
}

// NewTabWriter creates a tab-delimited writer. bedColCount is the number of
// input BED columns to pad/echo before the annotation columns, so the
// header's column count always matches bedColCount + len(annotationColumns).
func NewTabWriter(w io.Writer, bedColCount int) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w), bedColCount: bedColCount}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	cols := make([]string, 0, tw.bedColCount+len(annotationColumns))
	for i := 1; i <= tw.bedColCount; i++ {
		cols = append(cols, fmt.Sprintf("col%d", i))
	}
	cols = append(cols, annotationColumns...)
	_, err := tw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write emits one row per candidate, each made of the region's original
// columns (chrom, start, end in BED's half-open convention, then metadata)
// followed by the annotation columns. If cands is empty, a single
// unannotated row is still written so every input region appears in the
// output.
func (tw *TabWriter) Write(rgn *region.Region, cands []region.Candidate) error {
	bedCols := bedColumns(rgn)
	if len(cands) == 0 {
		return tw.writeRow(bedCols, region.Candidate{})
	}
	for _, c := range cands {
		if err := tw.writeRow(bedCols, c); err != nil {
			return err
		}
	}
	return nil
}

func bedColumns(rgn *region.Region) []string {
	cols := make([]string, 0, 3+len(rgn.Metadata))
	cols = append(cols, rgn.Chrom, strconv.FormatInt(rgn.Start-1, 10), strconv.FormatInt(rgn.End, 10))
	cols = append(cols, rgn.Metadata...)
	return cols
}

func (tw *TabWriter) writeRow(bedCols []string, c region.Candidate) error {
	values := make([]string, 0, len(bedCols)+len(annotationColumns))
	values = append(values, bedCols...)
	for len(values) < tw.bedColCount {
		values = append(values, "")
	}

	if c.GeneID == "" && c.TranscriptID == "" {
		values = append(values, "-", "-", "-", "-", "-", "-", "-", "-", "-")
	} else {
		exonNr := c.ExonNumberList
		if exonNr == "" {
			exonNr = "-"
		}
		values = append(values,
			c.Area.String(),
			c.GeneID,
			c.TranscriptID,
			exonNr,
			c.Strand,
			strconv.FormatInt(c.Distance, 10),
			strconv.FormatInt(c.TSSDistance, 10),
			strconv.FormatFloat(c.PctgRegion, 'f', 2, 64),
			strconv.FormatFloat(c.PctgArea, 'f', 2, 64),
		)
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
