package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    ReportLevel
		wantErr bool
	}{
		{"exon", LevelExon, false},
		{"transcript", LevelTranscript, false},
		{"gene", LevelGene, false},
		{"bogus", 0, true},
	}
	for _, c := range cases {
		got, err := ParseReportLevel(c.in)
		if c.wantErr {
			assert.Error(t, err, "ParseReportLevel(%q)", c.in)
			continue
		}
		require.NoError(t, err, "ParseReportLevel(%q)", c.in)
		assert.Equal(t, c.want, got, "ParseReportLevel(%q)", c.in)
	}
}

func TestConfig_Validate_RejectsNegativesAndOutOfRangePercentages(t *testing.T) {
	base := DefaultConfig()

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"negative distance", func(c *Config) { c.DistanceKb = -1 }, true},
		{"negative tss", func(c *Config) { c.TSS = -1 }, true},
		{"negative tts", func(c *Config) { c.TTS = -1 }, true},
		{"negative promoter", func(c *Config) { c.Promoter = -1 }, true},
		{"perc_area too high", func(c *Config) { c.PercArea = 101 }, true},
		{"perc_area negative", func(c *Config) { c.PercArea = -1 }, true},
		{"perc_region too high", func(c *Config) { c.PercRegion = 101 }, true},
		{"empty rules", func(c *Config) { c.Rules = nil }, true},
	}
	for _, c := range cases {
		cfg := base
		c.mutate(&cfg)
		err := cfg.Validate()
		if c.wantErr {
			assert.Error(t, err, c.name)
		} else {
			assert.NoError(t, err, c.name)
		}
	}
}

func TestConfig_MaxLookback_PicksWidestZone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TSS = 200
	cfg.TTS = 50
	cfg.Promoter = 1300
	cfg.DistanceKb = 10

	assert.Equal(t, cfg.DistanceBp(), cfg.MaxLookback())

	cfg.DistanceKb = 0
	assert.Equal(t, cfg.Promoter, cfg.MaxLookback())
}

func TestConfig_RulePriority_UnlistedAreaSortsLast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Area{AreaFirstExon, AreaExon}

	assert.Equal(t, 0, cfg.RulePriority(AreaFirstExon))
	assert.Equal(t, 1, cfg.RulePriority(AreaExon))
	assert.Equal(t, len(cfg.Rules), cfg.RulePriority(AreaIntron))
}

func TestConfig_DistanceBp(t *testing.T) {
	cfg := Config{DistanceKb: 10}
	assert.Equal(t, int64(10000), cfg.DistanceBp())
}
