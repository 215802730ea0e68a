package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rgmatch/rgmatch/internal/cache"
)

func newCacheCmd() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the cached gene model",
	}
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "gene model cache directory (default: ~/.rgmatch/cache)")

	cmd.AddCommand(&cobra.Command{
		Use:  "clear",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveCacheDir(cacheDir)
			cache.NewSnapshot(dir).Clear()
			if err := os.Remove(filepath.Join(dir, "genes.duckdb")); err != nil && !os.IsNotExist(err) {
				return err
			}
			fmt.Printf("Cleared cache at %s\n", dir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:  "info",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resolveCacheDir(cacheDir)
			fmt.Printf("Cache directory: %s\n", dir)
			if fi, err := os.Stat(filepath.Join(dir, "genes.gob")); err == nil {
				fmt.Printf("  gob snapshot: %d bytes\n", fi.Size())
			}
			if fi, err := os.Stat(filepath.Join(dir, "genes.duckdb")); err == nil {
				fmt.Printf("  duckdb cache: %d bytes\n", fi.Size())
			}
			return nil
		},
	})

	return cmd
}

func resolveCacheDir(cacheDir string) string {
	if cacheDir != "" {
		return cacheDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".rgmatch", "cache")
	}
	return ".rgmatch-cache"
}
