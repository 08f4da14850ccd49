package threatsignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"

	"github.com/pboennig/cs152-bot/util"
)

// HostedClassifierClient calls a self-hosted binary violence classifier
// sidecar. The sidecar wraps a fine-tuned sequence-classification model
// and answers with a violent/non-violent label and a confidence score.
type HostedClassifierClient struct {
	Client   http.Client
	Host     string
	Password string
}

func NewHostedClassifierClient(host, password string) HostedClassifierClient {
	return HostedClassifierClient{
		Client:   *util.RobustHTTPClient(),
		Host:     host,
		Password: password,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

// wire labels follow the model head: LABEL_1 is violent, LABEL_0 is not
type classifyResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HostedClassifierClient) ScoreText(ctx context.Context, text string) (*Judgment, error) {

	reqBody, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/classify", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	if c.Password != "" {
		req.SetBasicAuth("admin", c.Password)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "modbot/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		classifierAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %v", err)
	}
	defer res.Body.Close()

	classifierAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("classifier request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier resp body: %v", err)
	}

	var respObj classifyResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("failed to parse classifier resp JSON: %v", err)
	}

	out := &Judgment{Label: LabelNonViolent, Score: respObj.Score}
	if respObj.Label == "LABEL_1" || respObj.Label == LabelViolent {
		out.Label = LabelViolent
	}
	slog.Debug("classifier-response", "label", out.Label, "score", out.Score)
	return out, nil
}

var _ Signal = (*HostedClassifierClient)(nil)
