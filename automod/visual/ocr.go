// Package visual extracts text from image attachments via an OCR sidecar
// service, so that text smuggled into images still reaches the threat
// scorer.
package visual

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"

	"github.com/pboennig/cs152-bot/platform"
	"github.com/pboennig/cs152-bot/util"
)

// Extractor converts an attachment to text. Unsupported attachment types
// yield an empty string, not an error.
type Extractor interface {
	ExtractText(ctx context.Context, att platform.Attachment) (string, error)
}

var imageSuffixes = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// IsImage reports whether the attachment filename looks like a supported
// image type.
func IsImage(att platform.Attachment) bool {
	name := strings.ToLower(att.Filename)
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// OCRClient talks to a self-hosted OCR sidecar which fetches the
// attachment URL and returns the recognized text.
type OCRClient struct {
	Client   http.Client
	Host     string
	Password string
}

func NewOCRClient(host, password string) OCRClient {
	return OCRClient{
		Client:   *util.RobustHTTPClient(),
		Host:     host,
		Password: password,
	}
}

type ocrRequest struct {
	URL string `json:"url"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

func (c *OCRClient) ExtractText(ctx context.Context, att platform.Attachment) (string, error) {
	if !IsImage(att) {
		return "", nil
	}

	slog.Debug("sending attachment to OCR", "filename", att.Filename)

	reqBody, err := json.Marshal(ocrRequest{URL: att.URL})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/ocr/extract", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	if c.Password != "" {
		req.SetBasicAuth("admin", c.Password)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "modbot/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		ocrAPIDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %v", err)
	}
	defer res.Body.Close()

	ocrAPICount.WithLabelValues(fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != 200 {
		return "", fmt.Errorf("ocr request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ocr resp body: %v", err)
	}

	var respObj ocrResponse
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return "", fmt.Errorf("failed to parse ocr resp JSON: %v", err)
	}
	return respObj.Text, nil
}

var _ Extractor = (*OCRClient)(nil)
