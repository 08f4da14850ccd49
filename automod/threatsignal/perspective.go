package threatsignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pboennig/cs152-bot/util"
)

var perspectiveHost = "https://commentanalyzer.googleapis.com"

// PerspectiveClient scores text with the Google Perspective API's THREAT
// attribute. The summary score is already a probability, so the label is
// always "violent" and the caller's threshold does the deciding.
type PerspectiveClient struct {
	Client http.Client
	APIKey string
	// Host overrides the Perspective endpoint, for tests.
	Host string
}

func NewPerspectiveClient(apiKey string) PerspectiveClient {
	return PerspectiveClient{
		Client: *util.RobustHTTPClient(),
		APIKey: apiKey,
		Host:   perspectiveHost,
	}
}

type perspectiveComment struct {
	Text string `json:"text"`
}

type perspectiveResponse struct {
	AttributeScores map[string]perspectiveAttribute `json:"attributeScores"`
}

type perspectiveAttribute struct {
	SummaryScore perspectiveScore `json:"summaryScore"`
}

type perspectiveScore struct {
	Value float64 `json:"value"`
}

func (c *PerspectiveClient) ScoreText(ctx context.Context, text string) (*Judgment, error) {

	reqObj := map[string]interface{}{
		"comment":             perspectiveComment{Text: text},
		"languages":           []string{"en"},
		"requestedAttributes": map[string]struct{}{"THREAT": {}},
	}
	reqBody, err := json.Marshal(reqObj)
	if err != nil {
		return nil, err
	}

	u := c.Host + "/v1alpha1/comments:analyze?key=" + c.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	defer func() {
		perspectiveAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perspective request failed: %v", err)
	}
	defer res.Body.Close()

	perspectiveAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("perspective request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read perspective resp body: %v", err)
	}

	var respObj perspectiveResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("failed to parse perspective resp JSON: %v", err)
	}

	attr, ok := respObj.AttributeScores["THREAT"]
	if !ok {
		return nil, fmt.Errorf("perspective response missing THREAT attribute")
	}
	return &Judgment{Label: LabelViolent, Score: attr.SummaryScore.Value}, nil
}

var _ Signal = (*PerspectiveClient)(nil)
