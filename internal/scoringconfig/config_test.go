package scoringconfig

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sectorlens/internal/contracts"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoad_File(t *testing.T) {
	path := "../../config/scoring.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, data, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "sector_default", cfg.Meta.ConfigID)

	// BANK override
	bank := cfg.FATAWeights("BANK")
	assert.InDelta(t, 0.7, bank.FA, 1e-9)
	assert.InDelta(t, 0.3, bank.TA, 1e-9)
	_, hasHealth := cfg.FAComponentWeights("BANK")[ComponentFinancialHealth]
	assert.False(t, hasHealth, "override replaces the global map")

	// 글로벌 fallback
	other := cfg.FATAWeights("TECH")
	assert.InDelta(t, 0.6, other.FA, 1e-9)
	assert.Len(t, cfg.TAComponentWeights("BANK"), 3)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	cfg, data, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, Default().Signal, cfg.Signal)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load("does-not-exist.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrConfiguration))
}

func TestParse_UnknownFieldFails(t *testing.T) {
	_, err := Parse([]byte("weights:\n  splitt:\n    fa: 0.5\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrConfiguration))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{
			name:   "split does not sum to one",
			mutate: func(c *Config) { c.Weights.Split = Split{FA: 0.6, TA: 0.5} },
			field:  "weights.split",
		},
		{
			name:   "split within epsilon passes",
			mutate: func(c *Config) { c.Weights.Split = Split{FA: 0.6 + 1e-7, TA: 0.4} },
		},
		{
			name: "component weights off",
			mutate: func(c *Config) {
				c.Weights.FAComponents[ComponentGrowth] = 0.5
			},
			field: "weights.fa_components",
		},
		{
			name: "unknown component",
			mutate: func(c *Config) {
				c.Weights.TAComponents = map[string]float64{"sentiment": 1.0}
			},
			field: "weights.ta_components",
		},
		{
			name: "sector override off",
			mutate: func(c *Config) {
				c.Sectors["BANK"] = SectorOverride{Split: &Split{FA: 0.9, TA: 0.2}}
			},
			field: "sectors.BANK.split",
		},
		{
			name:   "buy not above sell",
			mutate: func(c *Config) { c.Signal.BuyThreshold = 30 },
			field:  "signal",
		},
		{
			name: "non-monotone bands",
			mutate: func(c *Config) {
				c.Scoring.FA[ComponentGrowth][0].Thresholds.Good = 0.30
			},
			field: "scoring.fa.growth[0]",
		},
		{
			name:   "bad missing policy",
			mutate: func(c *Config) { c.Scoring.MissingPolicy = "ZERO" },
			field:  "scoring.missing_policy",
		},
		{
			name:   "band score out of range",
			mutate: func(c *Config) { c.Scoring.BandScores.Excellent = 120 },
			field:  "scoring.band_scores",
		},
		{
			name:   "window too short",
			mutate: func(c *Config) { c.Valuation.PercentileWindowYears = 0 },
			field:  "valuation.percentile_window_years",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)

			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrConfiguration))

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestWeightsSumForEverySector(t *testing.T) {
	cfg := Default()
	cfg.Sectors["BANK"] = SectorOverride{Split: &Split{FA: 0.7, TA: 0.3}}
	require.NoError(t, Validate(cfg))

	for _, code := range []string{"BANK", "TECH", ""} {
		s := cfg.FATAWeights(code)
		assert.InDelta(t, 1.0, s.FA+s.TA, 1e-6, code)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	cfg := Default()
	w := cfg.FAComponentWeights("X")
	w[ComponentGrowth] = 99
	assert.InDelta(t, 0.3, cfg.Weights.FAComponents[ComponentGrowth], 1e-9)
}

func TestHash(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, _ := Hash(Default())
	assert.Equal(t, h1, h2, "hash not deterministic")

	changed := Default()
	changed.Signal.BuyThreshold = 71
	h3, _ := Hash(changed)
	assert.NotEqual(t, h1, h3)
}
