package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rgmatch/rgmatch/internal/bed"
	"github.com/rgmatch/rgmatch/internal/cache"
	rgconfig "github.com/rgmatch/rgmatch/internal/config"
	"github.com/rgmatch/rgmatch/internal/genemodel"
	"github.com/rgmatch/rgmatch/internal/gtf"
	"github.com/rgmatch/rgmatch/internal/logging"
	"github.com/rgmatch/rgmatch/internal/match"
	"github.com/rgmatch/rgmatch/internal/output"
	"github.com/rgmatch/rgmatch/internal/region"
	"github.com/rgmatch/rgmatch/internal/worker"
)

func newAnnotateCmd() *cobra.Command {
	var (
		gtfPath    string
		outPath    string
		format     string
		noCache    bool
		cacheDir   string
		cacheBackend string
	)

	cmd := &cobra.Command{
		Use:   "annotate <bed-file>",
		Short: "Annotate BED regions against a GTF gene model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if gtfPath == "" {
				return fmt.Errorf("--gtf is required")
			}
			if cacheDir == "" {
				cacheDir = v.GetString(rgconfig.KeyCacheDir)
			}
			if cacheBackend == "" {
				cacheBackend = v.GetString(rgconfig.KeyCacheBackend)
			}
			return runAnnotate(cmd, args[0], gtfPath, outPath, format, noCache, cacheDir, cacheBackend)
		},
	}

	cmd.Flags().StringVar(&gtfPath, "gtf", "", "GTF gene model file (required, .gz accepted)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "tab", "output format: tab, json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always reparse the GTF, ignoring any cached gene model")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "gene model cache directory (default: ~/.rgmatch/cache)")
	cmd.Flags().StringVar(&cacheBackend, "cache-backend", "", "cache backend: gob or duckdb")

	return cmd
}

func runAnnotate(cmd *cobra.Command, bedPath, gtfPath, outPath, format string, noCache bool, cacheDir, cacheBackend string) error {
	log, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	cfg, err := rgconfig.BuildConfig(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	index, err := loadGeneModel(log, cfg, gtfPath, noCache, cacheDir, cacheBackend)
	if err != nil {
		return err
	}
	log.Infow("loaded gene model", "chromosomes", len(index))

	bedReader, err := bed.NewReader(bedPath)
	if err != nil {
		return fmt.Errorf("open BED file: %w", err)
	}
	defer bedReader.Close()

	var regions []*region.Region
	bedCols := 3
	for {
		rgn, parseErr, err := bedReader.NextCounted()
		if err != nil {
			return fmt.Errorf("read BED file: %w", err)
		}
		if parseErr != nil {
			log.Warnw("skipped malformed BED row", "reason", parseErr.Error())
			continue
		}
		if rgn == nil {
			break
		}
		if n := 3 + len(rgn.Metadata); n > bedCols {
			bedCols = n
		}
		regions = append(regions, rgn)
	}
	log.Infow("loaded regions", "count", len(regions))

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	driver := match.NewDriver(index, cfg, v.GetBool(rgconfig.KeyChromNormalize))
	workers := v.GetInt(rgconfig.KeyWorkers)
	pool := worker.NewPool(driver.MatchRegion, workers)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	items := worker.Feed(ctx, regions)
	results := pool.Run(ctx, items)

	switch format {
	case "tab":
		tw := output.NewTabWriter(out, bedCols)
		if err := tw.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		err = worker.OrderedCollect(results, func(r worker.WorkResult) error {
			if r.Err != nil {
				return r.Err
			}
			return tw.Write(r.Rgn, r.Cands)
		})
		if err == nil {
			err = tw.Flush()
		}
	case "json":
		jw := output.NewJSONWriter(out)
		err = worker.OrderedCollect(results, func(r worker.WorkResult) error {
			if r.Err != nil {
				return r.Err
			}
			return jw.Write(r.Rgn, r.Cands)
		})
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Infow("annotation complete", "regions", len(regions))
	return nil
}

// loadGeneModel parses gtfPath, using a cached gene model when one is valid
// for the same file fingerprint and parser config (spec.md §11), unless
// noCache forces a fresh parse.
func loadGeneModel(log interface{ Infow(string, ...any) }, cfg region.Config, gtfPath string, noCache bool, cacheDir, cacheBackend string) (map[string]*genemodel.GeneIndex, error) {
	fp, statErr := cache.StatFile(gtfPath)
	configKey := rgconfig.Key(cfg)

	if cacheDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cacheDir = filepath.Join(home, ".rgmatch", "cache")
		}
	}

	if !noCache && statErr == nil && cacheDir != "" {
		if idx, ok := tryCachedGeneModel(log, cfg, fp, configKey, cacheDir, cacheBackend); ok {
			return idx, nil
		}
	}

	loader := gtf.NewLoader(gtf.Options{
		GeneIDTag:       cfg.GeneIDTag,
		TranscriptIDTag: cfg.TranscriptIDTag,
		ChromNormalize:  v.GetBool(rgconfig.KeyChromNormalize),
	})
	index, stats, err := loader.LoadFile(gtfPath)
	if err != nil {
		return nil, fmt.Errorf("load GTF: %w", err)
	}
	log.Infow("parsed GTF", "transcripts", stats.TranscriptCount, "exons", stats.ExonCount,
		"skipped_strand", stats.SkippedStrand, "skipped_malformed", stats.SkippedMalformed)

	if !noCache && statErr == nil && cacheDir != "" {
		writeGeneModelCache(log, index, fp, configKey, cacheDir, cacheBackend)
	}

	return index, nil
}

func tryCachedGeneModel(log interface{ Infow(string, ...any) }, cfg region.Config, fp cache.FileFingerprint, configKey, cacheDir, cacheBackend string) (map[string]*genemodel.GeneIndex, bool) {
	if cacheBackend == "duckdb" {
		c, err := cache.OpenGTFCache(filepath.Join(cacheDir, "genes.duckdb"))
		if err != nil {
			return nil, false
		}
		defer c.Close()
		ok, err := c.Valid(fp, configKey)
		if err != nil || !ok {
			return nil, false
		}
		idx, err := c.Load()
		if err != nil {
			return nil, false
		}
		log.Infow("using cached gene model", "backend", "duckdb", "dir", cacheDir)
		return idx, true
	}

	snap := cache.NewSnapshot(cacheDir)
	if !snap.Valid(fp, configKey) {
		return nil, false
	}
	idx, err := snap.Load()
	if err != nil {
		return nil, false
	}
	log.Infow("using cached gene model", "backend", "gob", "dir", cacheDir)
	return idx, true
}

func writeGeneModelCache(log interface{ Infow(string, ...any) }, index map[string]*genemodel.GeneIndex, fp cache.FileFingerprint, configKey, cacheDir, cacheBackend string) {
	var err error
	if cacheBackend == "duckdb" {
		var c *cache.GTFCache
		c, err = cache.OpenGTFCache(filepath.Join(cacheDir, "genes.duckdb"))
		if err == nil {
			defer c.Close()
			err = c.Store(index, fp, configKey)
		}
	} else {
		err = cache.NewSnapshot(cacheDir).Write(index, fp, configKey)
	}
	if err != nil {
		log.Infow("failed to write gene model cache", "error", err.Error())
	}
}
