package services

import (
	"errors"
	"fmt"
	"math"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/pkg/logger"
)

var (
	// ErrBackendAbsent is returned by the absent backend
	ErrBackendAbsent = errors.New("scoring backend not configured")
	// ErrMalformedScore is reported when a backend returns a value outside [0,1]
	ErrMalformedScore = errors.New("scoring backend returned a malformed probability")
)

// ScoringBackend is a trained classifier. Score receives the fixed-order
// feature vector and returns the scam probability in [0,1].
type ScoringBackend interface {
	Score(features []float64) (float64, error)
}

type absentBackend struct{}

func (absentBackend) Score([]float64) (float64, error) { return 0, ErrBackendAbsent }

// NoBackend returns the explicit "no classifier" backend
func NoBackend() ScoringBackend { return absentBackend{} }

// IsAbsent reports whether b is the absent backend
func IsAbsent(b ScoringBackend) bool {
	_, ok := b.(absentBackend)
	return b == nil || ok
}

// FallbackScorer puts a backend in front of a rule-based score. Backend
// failures are logged and answered with the rule score; callers never see them.
type FallbackScorer struct {
	backend ScoringBackend
	name    string
	logger  *logger.Logger
}

// NewFallbackScorer wraps backend; a nil backend is treated as absent
func NewFallbackScorer(name string, backend ScoringBackend, log *logger.Logger) *FallbackScorer {
	if backend == nil {
		backend = NoBackend()
	}
	return &FallbackScorer{
		backend: backend,
		name:    name,
		logger:  log.WithComponent("scorer").WithFields(map[string]any{"scorer": name}),
	}
}

// HasBackend reports whether a classifier is configured
func (s *FallbackScorer) HasBackend() bool {
	return !IsAbsent(s.backend)
}

// Score returns a score in [0,100] and where it came from
func (s *FallbackScorer) Score(vector []float64, ruleScore func() float64) (float64, models.ScoreSource) {
	if !s.HasBackend() {
		return ruleScore(), models.ScoreSourceRules
	}

	prob, err := s.callBackend(vector)
	if err != nil {
		s.logger.Warn().Err(err).Msg("scoring backend failed, using rule-based score")
		return ruleScore(), models.ScoreSourceRulesFallback
	}
	return prob * 100, models.ScoreSourceModel
}

func (s *FallbackScorer) callBackend(vector []float64) (prob float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring backend panicked: %v", r)
		}
	}()

	prob, err = s.backend.Score(vector)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return 0, fmt.Errorf("%w: %v", ErrMalformedScore, prob)
	}
	return prob, nil
}

// LoadBackend loads a random-forest export from path. An empty path or a
// load failure yields the absent backend.
func LoadBackend(path string, featureNames []string, log *logger.Logger) ScoringBackend {
	if path == "" {
		return NoBackend()
	}
	rf, err := LoadRandomForest(path, featureNames)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not load model, using rule-based analysis")
		return NoBackend()
	}
	info := rf.GetModelInfo()
	log.Info().
		Str("model", info.Name).
		Str("version", info.Version).
		Int("trees", info.NumTrees).
		Str("path", path).
		Msg("model loaded")
	return rf
}
