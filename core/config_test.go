package core

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 0.0, cfg.MinFinalScore)
	assert.Equal(t, 0.0, cfg.MinAlignmentScore)
	assert.Equal(t, 0.2, cfg.MinAnswerCoverage)
	assert.Equal(t, 0.6, cfg.SupportedAnswerCoverage)
	assert.False(t, cfg.AllowEmbeddingOnly)
	assert.Equal(t, 0.3, cfg.MinEmbeddingSimilarity)
	assert.Equal(t, 0.6, cfg.SupportedEmbeddingSimilarity)
	assert.Equal(t, 1, cfg.WindowSentences)
	assert.Equal(t, 1, cfg.StrideSentences)
	assert.Equal(t, 200, cfg.MaxLexicalCandidates)
	assert.Equal(t, 200, cfg.MaxEmbeddingCandidates)
	assert.Equal(t, 400, cfg.MaxTotalCandidates)
	assert.Equal(t, 2, cfg.MaxCitationsPerSource)
	assert.Equal(t, DefaultWeights(), cfg.Weights)
	assert.Equal(t, 2, cfg.MatchScore)
	assert.Equal(t, -1, cfg.MismatchScore)
	assert.Equal(t, -1, cfg.GapScore)
	assert.True(t, cfg.PreferSourceOrder)
	assert.False(t, cfg.MultiSpanEvidence)
	assert.Equal(t, 0, cfg.MultiSpanMergeGapChars)
	assert.Equal(t, 5, cfg.MultiSpanMaxSpans)
	assert.Equal(t, BackendAuto, cfg.Backend)
	assert.Equal(t, runtime.NumCPU(), cfg.PoolSize)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with top k", func(t *testing.T) {
		cfg := NewConfig(WithTopK(7))

		assert.Equal(t, 7, cfg.TopK)
	})

	t.Run("with windowing", func(t *testing.T) {
		cfg := NewConfig(WithWindow(3, 2))

		assert.Equal(t, 3, cfg.WindowSentences)
		assert.Equal(t, 2, cfg.StrideSentences)
	})

	t.Run("with candidate caps", func(t *testing.T) {
		cfg := NewConfig(WithCandidateCaps(50, 60, 80))

		assert.Equal(t, 50, cfg.MaxLexicalCandidates)
		assert.Equal(t, 60, cfg.MaxEmbeddingCandidates)
		assert.Equal(t, 80, cfg.MaxTotalCandidates)
	})

	t.Run("with alignment scores", func(t *testing.T) {
		cfg := NewConfig(WithAlignmentScores(3, -2, -2))

		assert.Equal(t, 3, cfg.MatchScore)
		assert.Equal(t, -2, cfg.MismatchScore)
		assert.Equal(t, -2, cfg.GapScore)
	})

	t.Run("with multi span evidence", func(t *testing.T) {
		cfg := NewConfig(WithMultiSpanEvidence(10, 4))

		assert.True(t, cfg.MultiSpanEvidence)
		assert.Equal(t, 10, cfg.MultiSpanMergeGapChars)
		assert.Equal(t, 4, cfg.MultiSpanMaxSpans)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithTopK(1),
			WithMinAnswerCoverage(0.5),
			WithBackend(BackendReference),
			WithPreferSourceOrder(false),
		)

		assert.Equal(t, 1, cfg.TopK)
		assert.Equal(t, 0.5, cfg.MinAnswerCoverage)
		assert.Equal(t, BackendReference, cfg.Backend)
		assert.False(t, cfg.PreferSourceOrder)
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("fills empty backend", func(t *testing.T) {
		cfg := Config{}
		cfg.Normalize()

		assert.Equal(t, BackendAuto, cfg.Backend)
	})

	t.Run("fills non-positive pool size", func(t *testing.T) {
		cfg := Config{PoolSize: -3}
		cfg.Normalize()

		assert.Equal(t, runtime.NumCPU(), cfg.PoolSize)
	})

	t.Run("fills all-zero weights", func(t *testing.T) {
		cfg := Config{}
		cfg.Normalize()

		assert.Equal(t, DefaultWeights(), cfg.Weights)
	})

	t.Run("keeps explicit weights", func(t *testing.T) {
		w := Weights{Alignment: 2.0}
		cfg := Config{Weights: w}
		cfg.Normalize()

		assert.Equal(t, w, cfg.Weights)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func(mutate func(*Config)) Config {
		cfg := DefaultConfig()
		mutate(&cfg)
		return cfg
	}

	t.Run("default config is valid", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("top k zero is valid", func(t *testing.T) {
		cfg := valid(func(c *Config) { c.TopK = 0 })
		assert.NoError(t, cfg.Validate())
	})

	t.Run("top k negative is valid", func(t *testing.T) {
		cfg := valid(func(c *Config) { c.TopK = -1 })
		assert.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "zero window",
			mutate:  func(c *Config) { c.WindowSentences = 0 },
			wantErr: ErrNonPositiveWindow,
		},
		{
			name:    "negative stride",
			mutate:  func(c *Config) { c.StrideSentences = -1 },
			wantErr: ErrNonPositiveStride,
		},
		{
			name:    "zero lexical cap",
			mutate:  func(c *Config) { c.MaxLexicalCandidates = 0 },
			wantErr: ErrNonPositiveCandidates,
		},
		{
			name:    "zero total cap",
			mutate:  func(c *Config) { c.MaxTotalCandidates = 0 },
			wantErr: ErrNonPositiveCandidates,
		},
		{
			name:    "zero per-source cap",
			mutate:  func(c *Config) { c.MaxCitationsPerSource = 0 },
			wantErr: ErrNonPositiveCandidates,
		},
		{
			name:    "zero match score",
			mutate:  func(c *Config) { c.MatchScore = 0 },
			wantErr: ErrInvalidMatchScore,
		},
		{
			name:    "positive mismatch score",
			mutate:  func(c *Config) { c.MismatchScore = 1 },
			wantErr: ErrInvalidPenalty,
		},
		{
			name:    "positive gap score",
			mutate:  func(c *Config) { c.GapScore = 1 },
			wantErr: ErrInvalidPenalty,
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.MinAnswerCoverage = 1.5 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.SupportedAnswerCoverage = -0.1 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "zero max spans",
			mutate:  func(c *Config) { c.MultiSpanMaxSpans = 0 },
			wantErr: ErrInvalidMultiSpan,
		},
		{
			name:    "negative merge gap",
			mutate:  func(c *Config) { c.MultiSpanMergeGapChars = -1 },
			wantErr: ErrInvalidMultiSpan,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Backend = "gpu" },
			wantErr: ErrUnknownBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(tt.mutate)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPresets(t *testing.T) {
	t.Run("strict raises thresholds", func(t *testing.T) {
		cfg := StrictConfig()

		assert.Greater(t, cfg.MinAnswerCoverage, 0.3)
		assert.Greater(t, cfg.SupportedAnswerCoverage, 0.6)
		assert.LessOrEqual(t, cfg.TopK, 3)
		assert.False(t, cfg.AllowEmbeddingOnly)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("permissive lowers thresholds", func(t *testing.T) {
		cfg := PermissiveConfig()

		assert.Less(t, cfg.MinAnswerCoverage, 0.2)
		assert.True(t, cfg.AllowEmbeddingOnly)
		assert.GreaterOrEqual(t, cfg.TopK, 3)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("fast shrinks candidate caps", func(t *testing.T) {
		cfg := FastConfig()

		assert.Less(t, cfg.MaxLexicalCandidates, 100)
		assert.Less(t, cfg.MaxTotalCandidates, 200)
		assert.Equal(t, 1, cfg.TopK)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("balanced matches defaults", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), BalancedConfig())
	})

	t.Run("preset lookup", func(t *testing.T) {
		for _, name := range []string{"strict", "permissive", "fast", "balanced", "default"} {
			cfg, ok := PresetConfig(name)
			require.True(t, ok, name)
			assert.NoError(t, cfg.Validate())
		}

		_, ok := PresetConfig("turbo")
		assert.False(t, ok)
	})
}
