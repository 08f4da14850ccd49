package threatsignal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pboennig/cs152-bot/automod/setstore"
)

func TestKeywordScorer(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	sets := setstore.NewMemSetStore()
	sets.Sets["violent-words"] = map[string]bool{"hurt": true, "kill": true}
	scorer := NewKeywordScorer(sets, "violent-words")

	j, err := scorer.ScoreText(ctx, "I will hurt you")
	assert.NoError(err)
	assert.Equal(LabelViolent, j.Label)
	assert.True(j.Flagged(0.5))

	j, err = scorer.ScoreText(ctx, "what a nice day")
	assert.NoError(err)
	assert.Equal(LabelNonViolent, j.Label)
	assert.False(j.Flagged(0.5))

	// folding catches decorated evasions
	j, err = scorer.ScoreText(ctx, "i will h.u.r.t you")
	assert.NoError(err)
	assert.Equal(LabelNonViolent, j.Label)
	j, err = scorer.ScoreText(ctx, "I will húrt you!!!")
	assert.NoError(err)
	assert.Equal(LabelViolent, j.Label)
}

func TestHostedClassifierClient(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/classify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"label": "LABEL_1", "score": 0.97}`))
	}))
	defer srv.Close()

	c := NewHostedClassifierClient(srv.URL, "")
	j, err := c.ScoreText(ctx, "threatening text")
	assert.NoError(err)
	assert.Equal(LabelViolent, j.Label)
	assert.InDelta(0.97, j.Score, 0.001)
	assert.True(j.Flagged(0.9))
	assert.False(j.Flagged(0.99))
}

func TestPerspectiveClient(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"attributeScores": {"THREAT": {"summaryScore": {"value": 0.83}}}}`))
	}))
	defer srv.Close()

	c := NewPerspectiveClient("test-key")
	c.Host = srv.URL
	j, err := c.ScoreText(ctx, "threatening text")
	assert.NoError(err)
	assert.Equal(LabelViolent, j.Label)
	assert.InDelta(0.83, j.Score, 0.001)
}
