package threatsignal

import (
	"context"

	"github.com/pboennig/cs152-bot/automod/setstore"
)

// KeywordScorer flags text containing any token from a named term set.
// It is the zero-dependency fallback judge, and can also run in front of
// a slower remote judge as a prescreen.
type KeywordScorer struct {
	Sets    setstore.SetStore
	SetName string
}

func NewKeywordScorer(sets setstore.SetStore, setName string) *KeywordScorer {
	return &KeywordScorer{Sets: sets, SetName: setName}
}

func (s *KeywordScorer) ScoreText(ctx context.Context, text string) (*Judgment, error) {
	for _, tok := range TokenizeText(text) {
		hit, err := s.Sets.InSet(ctx, s.SetName, tok)
		if err != nil {
			return nil, err
		}
		if hit {
			return &Judgment{Label: LabelViolent, Score: 1.0}, nil
		}
	}
	return &Judgment{Label: LabelNonViolent, Score: 1.0}, nil
}

var _ Signal = (*KeywordScorer)(nil)
