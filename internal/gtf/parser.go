// Package gtf parses GENCODE/Ensembl-style GTF annotation files into the
// genemodel gene/transcript/exon tree (spec.md §6).
package gtf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rgmatch/rgmatch/internal/genemodel"
)

// Options configures attribute key extraction; defaults match GENCODE.
type Options struct {
	GeneIDTag       string // default "gene_id"
	TranscriptIDTag string // default "transcript_id"
	// ChromNormalize strips a leading "chr" from every chromosome name as it
	// is read, so a GENCODE "chr1" indexes alongside a bare-"1" BED region.
	// This must track the driver's own --chrom_normalize setting (spec.md
	// §7): with it off, GTF keys are left exactly as written so they stay
	// comparable to a BED reader that never normalizes either.
	ChromNormalize bool
}

// DefaultOptions returns the GENCODE-standard attribute tag names with
// chromosome normalization enabled.
func DefaultOptions() Options {
	return Options{GeneIDTag: "gene_id", TranscriptIDTag: "transcript_id", ChromNormalize: true}
}

// Stats reports rows skipped during parsing, matching spec.md §7's
// "skipped with a count, not fatal" contract for bad-strand GTF rows.
type Stats struct {
	SkippedStrand    int
	SkippedMalformed int
	TranscriptCount  int
	ExonCount        int
}

// Loader reads a GTF file (optionally gzip compressed) into per-chromosome
// gene indexes.
type Loader struct {
	opts Options
}

// NewLoader creates a Loader with the given attribute tag options.
func NewLoader(opts Options) *Loader {
	if opts.GeneIDTag == "" {
		opts.GeneIDTag = "gene_id"
	}
	if opts.TranscriptIDTag == "" {
		opts.TranscriptIDTag = "transcript_id"
	}
	return &Loader{opts: opts}
}

// LoadFile opens path (transparently gunzipping on .gz suffix or magic
// bytes) and parses it.
func (l *Loader) LoadFile(path string) (map[string]*genemodel.GeneIndex, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	reader, err := maybeGunzip(f, path)
	if err != nil {
		return nil, Stats{}, err
	}
	if c, ok := reader.(io.Closer); ok && reader != io.Reader(f) {
		defer c.Close()
	}

	return l.Load(reader)
}

// maybeGunzip wraps r in a gzip reader when path ends in .gz or the stream
// starts with the gzip magic bytes, mirroring the teacher's VCF parser
// (internal/vcf/parser.go) detection.
func maybeGunzip(f *os.File, path string) (io.Reader, error) {
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return gz, nil
	}

	buf := make([]byte, 2)
	n, _ := io.ReadFull(f, buf)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek GTF file: %w", err)
	}
	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return gz, nil
	}
	return f, nil
}

// gtfRow is one parsed tab-separated GTF line.
type gtfRow struct {
	chrom      string
	featType   string
	start, end int64
	strand     string
	attrs      map[string]string
}

// Load parses GTF content from r and assembles per-chromosome gene indexes.
// Rows with an invalid strand are skipped and counted (spec.md §7); other
// malformed rows are likewise skipped and counted rather than failing the
// whole parse.
func (l *Loader) Load(r io.Reader) (map[string]*genemodel.GeneIndex, Stats, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	type transcriptBuild struct {
		geneID      string
		chrom       string
		strand      genemodel.Strand
		exons       []genemodel.Exon
		isCanonical bool
	}

	transcripts := make(map[string]*transcriptBuild)
	var order []string
	var stats Stats

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		row, err := l.parseRow(line)
		if err != nil {
			stats.SkippedMalformed++
			continue
		}

		strand, err := genemodel.ParseStrand(row.strand)
		if err != nil {
			stats.SkippedStrand++
			continue
		}

		if row.featType != "transcript" && row.featType != "exon" {
			continue
		}

		transcriptID := stripVersion(row.attrs[l.opts.TranscriptIDTag])
		geneID := stripVersion(row.attrs[l.opts.GeneIDTag])
		if transcriptID == "" || geneID == "" {
			stats.SkippedMalformed++
			continue
		}

		tb, ok := transcripts[transcriptID]
		if !ok {
			tb = &transcriptBuild{geneID: geneID, chrom: row.chrom, strand: strand}
			transcripts[transcriptID] = tb
			order = append(order, transcriptID)
		}

		switch row.featType {
		case "transcript":
			tag := row.attrs["tag"]
			tb.isCanonical = strings.Contains(tag, "Ensembl_canonical")
		case "exon":
			tb.exons = append(tb.exons, genemodel.Exon{Start: row.start, End: row.end})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan GTF: %w", err)
	}

	genesByChrom := make(map[string][]*genemodel.Gene)
	genesByID := make(map[string]map[string]*genemodel.Transcript)
	geneMeta := make(map[string]*transcriptBuild)

	for _, id := range order {
		tb := transcripts[id]
		if len(tb.exons) == 0 {
			continue
		}
		t := genemodel.NewTranscript(id, tb.geneID, tb.chrom, tb.strand, tb.exons)
		t.IsCanonical = tb.isCanonical
		if genesByID[tb.geneID] == nil {
			genesByID[tb.geneID] = make(map[string]*genemodel.Transcript)
			geneMeta[tb.geneID] = tb
		}
		genesByID[tb.geneID][id] = t
		stats.TranscriptCount++
		stats.ExonCount += len(tb.exons)
	}

	for geneID, ts := range genesByID {
		meta := geneMeta[geneID]
		g := genemodel.NewGene(geneID, meta.chrom, meta.strand, ts)
		genesByChrom[meta.chrom] = append(genesByChrom[meta.chrom], g)
	}

	indexes := make(map[string]*genemodel.GeneIndex, len(genesByChrom))
	for chrom, genes := range genesByChrom {
		indexes[chrom] = genemodel.NewGeneIndex(genes)
	}
	return indexes, stats, nil
}

func (l *Loader) parseRow(line string) (gtfRow, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return gtfRow{}, fmt.Errorf("expected 9 fields, got %d", len(fields))
	}
	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return gtfRow{}, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return gtfRow{}, fmt.Errorf("parse end: %w", err)
	}
	chrom := fields[0]
	if l.opts.ChromNormalize {
		chrom = normalizeChrom(chrom)
	}
	return gtfRow{
		chrom:    chrom,
		featType: fields[2],
		start:    start,
		end:      end,
		strand:   fields[6],
		attrs:    parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the GTF attribute column: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.IndexByte(part, ' ')
		if idx == -1 {
			continue
		}
		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")
		attrs[key] = value
	}
	return attrs
}

// stripVersion removes the Ensembl version suffix, e.g. "ENSG0001.3" -> "ENSG0001".
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}

// normalizeChrom strips a leading "chr" so GENCODE's "chr1" and a BED's bare
// "1" refer to the same chromosome key (supplements spec.md §6).
func normalizeChrom(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom[3:]
	}
	return chrom
}

// SortedChromosomes returns the chromosome keys of idx in sorted order.
func SortedChromosomes(idx map[string]*genemodel.GeneIndex) []string {
	chroms := make([]string, 0, len(idx))
	for c := range idx {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return chroms
}
