package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

func gencodeGTFURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
	}
	return fmt.Sprintf("%s/gencode.%s.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly  string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a GENCODE GTF annotation file",
		Long: `Download downloads the GENCODE GTF gene model used by the annotate
command's --gtf flag. Files already present in the destination are left
untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(assembly, outputDir)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", "GRCh38", "genome assembly: GRCh37 or GRCh38")
	cmd.Flags().StringVar(&outputDir, "output", "", "destination directory (default: ~/.rgmatch/<assembly>)")

	return cmd
}

func runDownload(assembly, outputDir string) error {
	if outputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		outputDir = filepath.Join(home, ".rgmatch", strings.ToLower(assembly))
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", outputDir, err)
	}

	url := gencodeGTFURL(assembly)
	dest := filepath.Join(outputDir, filepath.Base(url))

	fmt.Printf("Downloading GENCODE %s annotations for %s...\n", gencodeVersion, assembly)
	fmt.Printf("Destination: %s\n\n", dest)

	if err := downloadFile(url, dest); err != nil {
		return fmt.Errorf("download GTF: %w", err)
	}

	fmt.Printf("\nDownload complete!\n")
	fmt.Printf("To annotate regions, run:\n")
	fmt.Printf("  rgmatch annotate --gtf %s regions.bed\n", dest)
	return nil
}

func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%d bytes), skipping\n", filepath.Base(destPath), info.Size())
		return nil
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, destPath)
}
