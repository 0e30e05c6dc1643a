package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sheetdiff-service/internal/diff/model"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "HOST", "SIMILARITY_THRESHOLD", "STRING_METRIC", "SHAPE_TOLERANCE", "HEADER_ROW", "COMPARE_SHAPES"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, model.DefaultThreshold, cfg.SimilarityThreshold)
	assert.Equal(t, "positional", cfg.StringMetric)
	assert.Equal(t, 1, cfg.HeaderRow)
	assert.True(t, cfg.CompareShapes)
	assert.NoError(t, cfg.DiffOptions().Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SIMILARITY_THRESHOLD", "0.85")
	t.Setenv("STRING_METRIC", "Damerau")
	t.Setenv("SHAPE_TOLERANCE", "bad")
	t.Setenv("HEADER_ROW", "3")
	t.Setenv("COMPARE_SHAPES", "false")
	t.Setenv("ALLOW_ORIGINS", "http://a,http://b")

	cfg := Load()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowOrigins)
	assert.Equal(t, 3, cfg.HeaderRow)

	opt := cfg.DiffOptions()
	assert.Equal(t, 0.85, opt.Threshold)
	assert.Equal(t, model.MetricDamerau, opt.StringMetric)
	assert.Equal(t, model.DefaultShapeTolerance, opt.ShapeTolerance)
	assert.False(t, opt.CompareShapes)
}
