package screenings

import (
	"fmt"
	"math"
	"strings"
)

// Thresholds for risk classification. Boundary values belong to the upper
// tier (>=).
type Thresholds struct {
	High   float64
	Medium float64
}

// DefaultThresholds 0.8/0.6
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.8, Medium: 0.6}
}

// DefaultPenaltyCap is the maximum variance penalty subtracted from the mean.
const DefaultPenaltyCap = 0.3

// Aggregator combines per-modality confidences into one assessment. All
// methods are pure; zero-value fields fall back to the defaults.
type Aggregator struct {
	Thresholds Thresholds
	PenaltyCap float64
}

func NewAggregator(t Thresholds, penaltyCap float64) Aggregator {
	if t.High <= 0 && t.Medium <= 0 {
		t = DefaultThresholds()
	}
	if penaltyCap <= 0 {
		penaltyCap = DefaultPenaltyCap
	}
	return Aggregator{Thresholds: t, PenaltyCap: penaltyCap}
}

// Combine returns the mean of scores minus a variance penalty, clamped to
// [0,1]. Disagreeing modalities signal unreliable consensus, so high variance
// lowers the aggregate rather than averaging naively. Empty input yields the
// neutral 0.5.
func (a Aggregator) Combine(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.5
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))

	if len(scores) > 1 {
		var variance float64
		for _, s := range scores {
			variance += (s - mean) * (s - mean)
		}
		variance /= float64(len(scores))

		maxPenalty := a.PenaltyCap
		if maxPenalty <= 0 {
			maxPenalty = DefaultPenaltyCap
		}
		mean -= math.Min(variance*0.5, maxPenalty)
	}

	return math.Min(1.0, math.Max(0.0, mean))
}

// Classify maps a confidence score to a risk tier.
func (a Aggregator) Classify(confidence float64) RiskLevel {
	t := a.Thresholds
	if t.High <= 0 && t.Medium <= 0 {
		t = DefaultThresholds()
	}
	switch {
	case confidence >= t.High:
		return RiskHigh
	case confidence >= t.Medium:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Confidence-tier and general guidance appended to every merge.
const (
	recHighTier   = "Strong indicators suggest professional dyslexia assessment is recommended"
	recMediumTier = "Some indicators present - consider educational support strategies"
	recLowTier    = "Low-level indicators - continue monitoring and supportive practices"
)

var generalRecommendations = []string{
	"Use multi-sensory learning approaches",
	"Provide extra time for reading and writing tasks",
	"Consider assistive technology tools",
	"Regular practice with structured literacy programs",
}

// Merge unions per-modality recommendation lists (caller passes them in
// modality order), appends one tier recommendation and the general block, and
// deduplicates preserving first-seen order. Output is never empty.
func (a Aggregator) Merge(perModality [][]string, overallConfidence float64) []string {
	var merged []string
	for _, recs := range perModality {
		merged = append(merged, recs...)
	}

	t := a.Thresholds
	if t.High <= 0 && t.Medium <= 0 {
		t = DefaultThresholds()
	}
	switch {
	case overallConfidence >= t.High:
		merged = append(merged, recHighTier)
	case overallConfidence >= t.Medium:
		merged = append(merged, recMediumTier)
	default:
		merged = append(merged, recLowTier)
	}

	merged = append(merged, generalRecommendations...)

	seen := make(map[string]struct{}, len(merged))
	out := merged[:0]
	for _, r := range merged {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Summarize renders the one-line human-readable result. An empty modality
// list degrades to a generic no-input sentence instead of crashing.
func Summarize(modalities []Modality, level RiskLevel, confidence float64) string {
	if len(modalities) == 0 {
		return fmt.Sprintf(
			"Dyslexia screening completed without input modalities. Risk level assessed as %s. Confidence score: %.2f",
			strings.ToLower(string(level)), confidence)
	}

	names := make([]string, len(modalities))
	for i, m := range modalities {
		names[i] = string(m)
	}

	return fmt.Sprintf(
		"Dyslexia screening conducted using %s analysis. Risk level assessed as %s based on detected patterns and indicators. Confidence score: %.2f",
		strings.Join(names, ", "), strings.ToLower(string(level)), confidence)
}
