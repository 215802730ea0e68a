// Package main provides the rgmatch command-line tool.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rgconfig "github.com/rgmatch/rgmatch/internal/config"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool
	v       = viper.New()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rgmatch",
		Short:   "Annotate genomic regions against a gene model",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Long: `rgmatch matches BED regions against a GTF gene model, classifying each
region by its geometric relation to nearby genes: direct exon/intron
overlap, gene-body coverage, or TSS/TTS proximity, collapsed to one row
per exon, transcript or gene at the requested reporting level.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.rgmatch.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.PersistentFlags().Int64(rgconfig.KeyDistance, 10, "proximity search budget, in kb")
	cmd.PersistentFlags().Int64(rgconfig.KeyTSS, 200, "TSS zone width, in bp")
	cmd.PersistentFlags().Int64(rgconfig.KeyTTS, 0, "TTS zone width, in bp (0 disables the TTS zone)")
	cmd.PersistentFlags().Int64(rgconfig.KeyPromoter, 1300, "PROMOTER zone width, in bp")
	cmd.PersistentFlags().Float64(rgconfig.KeyPercArea, 90, "minimum pctg_area to keep an exon-like candidate")
	cmd.PersistentFlags().Float64(rgconfig.KeyPercRegion, 50, "minimum pctg_region to keep a proximity candidate")
	cmd.PersistentFlags().String(rgconfig.KeyLevel, "exon", "report level: exon, transcript, or gene")
	cmd.PersistentFlags().String(rgconfig.KeyGeneIDTag, "gene_id", "GTF attribute holding the gene ID")
	cmd.PersistentFlags().String(rgconfig.KeyTranscriptIDTag, "transcript_id", "GTF attribute holding the transcript ID")
	cmd.PersistentFlags().String(rgconfig.KeyCompat, "comprehensive", "proximity-slot overwrite mode: comprehensive or legacy")
	cmd.PersistentFlags().Int(rgconfig.KeyWorkers, 0, "worker goroutines (0 = runtime.NumCPU())")
	cmd.PersistentFlags().Bool(rgconfig.KeyChromNormalize, true, "try chromosome names with/without a chr prefix")
	cmd.PersistentFlags().StringP(rgconfig.KeyRules, "R", "", "comma-separated area priority order, e.g. TSS,1st_EXON,GENE_BODY,PROMOTER,INTRON,TTS,UPSTREAM,DOWNSTREAM (default: spec order)")

	for _, key := range []string{
		rgconfig.KeyDistance, rgconfig.KeyTSS, rgconfig.KeyTTS, rgconfig.KeyPromoter,
		rgconfig.KeyPercArea, rgconfig.KeyPercRegion, rgconfig.KeyLevel,
		rgconfig.KeyGeneIDTag, rgconfig.KeyTranscriptIDTag, rgconfig.KeyCompat,
		rgconfig.KeyWorkers, rgconfig.KeyChromNormalize, rgconfig.KeyRules,
	} {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(key))
	}

	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newDownloadCmd())

	return cmd
}

func initConfig() error {
	rgconfig.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".rgmatch")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("RGMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}
