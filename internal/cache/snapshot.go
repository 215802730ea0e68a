package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rgmatch/rgmatch/internal/genemodel"
)

// Snapshot manages a gob-serialized gene model on disk, alongside a fast
// file-fingerprint check so a stale snapshot is never silently reused:
//
//	<dir>/genes.gob       (serialized per-chromosome gene lists)
//	<dir>/genes.gob.meta  (source GTF fingerprint + config key)
type Snapshot struct {
	dir string
}

// NewSnapshot creates a gob snapshot cache rooted at dir.
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{dir: dir}
}

func (s *Snapshot) gobPath() string  { return filepath.Join(s.dir, "genes.gob") }
func (s *Snapshot) metaPath() string { return filepath.Join(s.dir, "genes.gob.meta") }

// Valid reports whether the cached snapshot still matches the given GTF
// fingerprint and parser config key (e.g. the gene/transcript ID tags, since
// those change what gets parsed out of the same file).
func (s *Snapshot) Valid(gtf FileFingerprint, configKey string) bool {
	meta, err := s.readMeta()
	if err != nil {
		return false
	}
	if meta["gtf_path"] != gtf.Path ||
		meta["gtf_size"] != strconv.FormatInt(gtf.Size, 10) ||
		meta["gtf_modtime"] != gtf.ModTime.UTC().Format(time.RFC3339Nano) ||
		meta["config_key"] != configKey {
		return false
	}
	if _, err := os.Stat(s.gobPath()); err != nil {
		return false
	}
	return true
}

// Load decodes the cached gene lists and rebuilds a GeneIndex per
// chromosome. The prefix-max pruning array is never serialized; NewGeneIndex
// recomputes it from the decoded genes.
func (s *Snapshot) Load() (map[string]*genemodel.GeneIndex, error) {
	f, err := os.Open(s.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open gene snapshot: %w", err)
	}
	defer f.Close()

	var data map[string][]*genemodel.Gene
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode gene snapshot: %w", err)
	}

	out := make(map[string]*genemodel.GeneIndex, len(data))
	for chrom, genes := range data {
		out[chrom] = genemodel.NewGeneIndex(genes)
	}
	return out, nil
}

// Write serializes idx to disk along with a fingerprint of the source GTF
// and the parser config key that produced it.
func (s *Snapshot) Write(idx map[string]*genemodel.GeneIndex, gtf FileFingerprint, configKey string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data := make(map[string][]*genemodel.Gene, len(idx))
	for chrom, gi := range idx {
		data[chrom] = gi.Genes
	}

	f, err := os.Create(s.gobPath())
	if err != nil {
		return fmt.Errorf("create gene snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(s.gobPath())
		return fmt.Errorf("encode gene snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close gene snapshot: %w", err)
	}

	return s.writeMeta(gtf, configKey)
}

// Clear removes the cached snapshot files.
func (s *Snapshot) Clear() {
	os.Remove(s.gobPath())
	os.Remove(s.metaPath())
}

func (s *Snapshot) writeMeta(gtf FileFingerprint, configKey string) error {
	lines := []string{
		"gtf_path=" + gtf.Path,
		"gtf_size=" + strconv.FormatInt(gtf.Size, 10),
		"gtf_modtime=" + gtf.ModTime.UTC().Format(time.RFC3339Nano),
		"config_key=" + configKey,
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(s.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (s *Snapshot) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		return nil, err
	}
	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
