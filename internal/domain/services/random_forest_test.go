package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

const twoTreeModel = `{
  "name": "test-forest",
  "version": "1.0.0",
  "feature_names": ["a", "b"],
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 0.5, "left": 1, "right": 2},
      {"leaf": true, "probability": [0.9, 0.1]},
      {"leaf": true, "probability": [0.2, 0.8]}
    ]},
    {"nodes": [
      {"leaf": true, "probability": [0.5, 0.5]}
    ]}
  ]
}`

func TestParseRandomForest(t *testing.T) {
	rf, err := ParseRandomForest([]byte(twoTreeModel), []string{"a", "b"})
	require.NoError(t, err)

	info := rf.GetModelInfo()
	assert.Equal(t, "test-forest", info.Name)
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, 2, info.NumTrees)

	p, err := rf.Score([]float64{0.5, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, p, 1e-9)

	p, err = rf.Score([]float64{0.7, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.65, p, 1e-9)

	_, err = rf.Score([]float64{1})
	assert.Error(t, err)
}

func TestParseRandomForest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		model string
	}{
		{"not json", `{`},
		{"no trees", `{"trees": []}`},
		{"feature order", `{"feature_names": ["b", "a"], "trees": [{"nodes": [{"leaf": true, "probability": [0.5, 0.5]}]}]}`},
		{"empty tree", `{"trees": [{"nodes": []}]}`},
		{"short leaf", `{"trees": [{"nodes": [{"leaf": true, "probability": [1]}]}]}`},
		{"unknown feature", `{"trees": [{"nodes": [
			{"feature": 5, "threshold": 1, "left": 1, "right": 2},
			{"leaf": true, "probability": [1, 0]},
			{"leaf": true, "probability": [0, 1]}]}]}`},
		{"backward child", `{"trees": [{"nodes": [
			{"feature": 0, "threshold": 1, "left": 0, "right": 1},
			{"leaf": true, "probability": [1, 0]}]}]}`},
		{"child out of range", `{"trees": [{"nodes": [
			{"feature": 0, "threshold": 1, "left": 1, "right": 9},
			{"leaf": true, "probability": [1, 0]}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRandomForest([]byte(tt.model), []string{"a", "b"})
			assert.Error(t, err)
		})
	}
}

func TestLoadBackend(t *testing.T) {
	log := logger.NewNop()

	assert.True(t, IsAbsent(LoadBackend("", models.CallFeatureNames, log)))
	assert.True(t, IsAbsent(LoadBackend(filepath.Join(t.TempDir(), "missing.json"), models.CallFeatureNames, log)))

	path := filepath.Join(t.TempDir(), "call.json")
	model := `{"trees": [{"nodes": [{"leaf": true, "probability": [0.3, 0.7]}]}]}`
	require.NoError(t, os.WriteFile(path, []byte(model), 0o600))

	backend := LoadBackend(path, models.CallFeatureNames, log)
	require.False(t, IsAbsent(backend))

	a := NewCallAnalyzer(DefaultRuleset(), backend, log)
	v, err := a.Analyze(safeCallInput())
	require.NoError(t, err)
	assert.Equal(t, 70.0, v.RiskScore)
	assert.Equal(t, models.RiskLevelHigh, v.RiskLevel)
	assert.Equal(t, models.ScoreSourceModel, v.ScoreSource)
}

func TestLoadBackend_LogsModelInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})

	path := filepath.Join(t.TempDir(), "forest.json")
	require.NoError(t, os.WriteFile(path, []byte(twoTreeModel), 0o600))

	backend := LoadBackend(path, []string{"a", "b"}, log)
	require.False(t, IsAbsent(backend))

	out := buf.String()
	assert.Contains(t, out, `"message":"model loaded"`)
	assert.Contains(t, out, `"model":"test-forest"`)
	assert.Contains(t, out, `"version":"1.0.0"`)
	assert.Contains(t, out, `"trees":2`)
}
