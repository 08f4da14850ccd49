// Package threatsignal provides the automated severity judges that score
// message text for violent content. Three sources are available: a hosted
// binary classifier sidecar, the Google Perspective web API, and a local
// keyword scorer backed by a term set.
//
// All sources are pure, possibly-failing functions from text to a
// Judgment; the decision threshold is applied by the caller.
package threatsignal

import (
	"context"
)

const (
	LabelViolent    = "violent"
	LabelNonViolent = "non-violent"
)

// Judgment is a normalized severity verdict: a label plus the judge's
// confidence in that label.
type Judgment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Flagged reports whether the judgment marks the text violent with at
// least the given confidence.
func (j *Judgment) Flagged(threshold float64) bool {
	return j.Label == LabelViolent && j.Score >= threshold
}

type Signal interface {
	ScoreText(ctx context.Context, text string) (*Judgment, error)
}
