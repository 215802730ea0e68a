package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/rgmatch/rgmatch/internal/genemodel"
)

// GTFCache persists a parsed gene model in a queryable DuckDB database, the
// alternative to the gob Snapshot that `rgmatch annotate --cache-backend
// duckdb` reads and writes.
type GTFCache struct {
	db   *sql.DB
	path string
}

// OpenGTFCache opens or creates a DuckDB database at path. An empty path
// opens an in-memory database.
func OpenGTFCache(path string) (*GTFCache, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	c := &GTFCache{db: db, path: path}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *GTFCache) Close() error {
	return c.db.Close()
}

func (c *GTFCache) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS source (
			gtf_path VARCHAR,
			gtf_size BIGINT,
			gtf_modtime VARCHAR,
			config_key VARCHAR,
			loaded_at VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS genes (
			gene_id VARCHAR,
			chrom VARCHAR,
			strand VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			PRIMARY KEY (gene_id)
		)`,
		`CREATE TABLE IF NOT EXISTS transcripts (
			transcript_id VARCHAR,
			gene_id VARCHAR,
			chrom VARCHAR,
			strand VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			is_canonical BOOLEAN,
			PRIMARY KEY (transcript_id)
		)`,
		`CREATE TABLE IF NOT EXISTS exons (
			transcript_id VARCHAR,
			exon_number INTEGER,
			start_pos BIGINT,
			end_pos BIGINT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Valid reports whether the cache holds data parsed from the given GTF
// fingerprint and config key.
func (c *GTFCache) Valid(gtf FileFingerprint, configKey string) (bool, error) {
	row := c.db.QueryRow(`SELECT COUNT(*) FROM source
		WHERE gtf_path = ? AND gtf_size = ? AND gtf_modtime = ? AND config_key = ?`,
		gtf.Path, gtf.Size, gtf.ModTime.UTC().Format(time.RFC3339Nano), configKey)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Store truncates and repopulates the cache from idx, tagging it with the
// source GTF's fingerprint and config key.
func (c *GTFCache) Store(idx map[string]*genemodel.GeneIndex, gtf FileFingerprint, configKey string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"source", "genes", "transcripts", "exons"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO source VALUES (?, ?, ?, ?, ?)`,
		gtf.Path, gtf.Size, gtf.ModTime.UTC().Format(time.RFC3339Nano), configKey,
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert source: %w", err)
	}

	for _, gi := range idx {
		for _, g := range gi.Genes {
			if _, err := tx.Exec(`INSERT INTO genes VALUES (?, ?, ?, ?, ?)`,
				g.ID, g.Chrom, g.Strand.String(), g.Start, g.End); err != nil {
				return fmt.Errorf("insert gene %s: %w", g.ID, err)
			}
			for _, t := range g.Transcripts {
				if _, err := tx.Exec(`INSERT INTO transcripts VALUES (?, ?, ?, ?, ?, ?, ?)`,
					t.ID, t.GeneID, t.Chrom, t.Strand.String(), t.Start, t.End, t.IsCanonical); err != nil {
					return fmt.Errorf("insert transcript %s: %w", t.ID, err)
				}
				for _, e := range t.Exons {
					if _, err := tx.Exec(`INSERT INTO exons VALUES (?, ?, ?, ?)`,
						t.ID, e.ExonNumber, e.Start, e.End); err != nil {
						return fmt.Errorf("insert exon %s/%d: %w", t.ID, e.ExonNumber, err)
					}
				}
			}
		}
	}

	return tx.Commit()
}

// Load reconstructs the gene index from the DuckDB tables.
func (c *GTFCache) Load() (map[string]*genemodel.GeneIndex, error) {
	genes := map[string]*genemodel.Gene{}
	geneChrom := map[string]string{}

	gRows, err := c.db.Query(`SELECT gene_id, chrom, strand, start_pos, end_pos FROM genes`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	for gRows.Next() {
		var id, chrom, strandStr string
		var start, end int64
		if err := gRows.Scan(&id, &chrom, &strandStr, &start, &end); err != nil {
			gRows.Close()
			return nil, err
		}
		strand, err := genemodel.ParseStrand(strandStr)
		if err != nil {
			gRows.Close()
			return nil, err
		}
		genes[id] = genemodel.NewGene(id, chrom, strand, nil)
		geneChrom[id] = chrom
	}
	if err := gRows.Err(); err != nil {
		gRows.Close()
		return nil, err
	}
	gRows.Close()

	exonsByTranscript := map[string][]genemodel.Exon{}
	eRows, err := c.db.Query(`SELECT transcript_id, exon_number, start_pos, end_pos FROM exons`)
	if err != nil {
		return nil, fmt.Errorf("query exons: %w", err)
	}
	for eRows.Next() {
		var tID string
		var num int
		var start, end int64
		if err := eRows.Scan(&tID, &num, &start, &end); err != nil {
			eRows.Close()
			return nil, err
		}
		exonsByTranscript[tID] = append(exonsByTranscript[tID], genemodel.Exon{Start: start, End: end, ExonNumber: num})
	}
	if err := eRows.Err(); err != nil {
		eRows.Close()
		return nil, err
	}
	eRows.Close()

	byChrom := map[string][]*genemodel.Gene{}
	tRows, err := c.db.Query(`SELECT transcript_id, gene_id, chrom, strand, is_canonical FROM transcripts`)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer tRows.Close()
	for tRows.Next() {
		var tID, geneID, chrom, strandStr string
		var isCanonical bool
		if err := tRows.Scan(&tID, &geneID, &chrom, &strandStr, &isCanonical); err != nil {
			return nil, err
		}
		strand, err := genemodel.ParseStrand(strandStr)
		if err != nil {
			return nil, err
		}
		t := genemodel.NewTranscript(tID, geneID, chrom, strand, exonsByTranscript[tID])
		t.IsCanonical = isCanonical

		g, ok := genes[geneID]
		if !ok {
			continue
		}
		if g.Transcripts == nil {
			g.Transcripts = map[string]*genemodel.Transcript{}
		}
		g.Transcripts[tID] = t
		if t.Start < g.Start || g.Start == 0 {
			g.Start = t.Start
		}
		if t.End > g.End {
			g.End = t.End
		}
	}
	if err := tRows.Err(); err != nil {
		return nil, err
	}

	for id, g := range genes {
		byChrom[geneChrom[id]] = append(byChrom[geneChrom[id]], g)
	}

	out := make(map[string]*genemodel.GeneIndex, len(byChrom))
	for chrom, gs := range byChrom {
		out[chrom] = genemodel.NewGeneIndex(gs)
	}
	return out, nil
}
