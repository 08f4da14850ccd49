package visual

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pboennig/cs152-bot/platform"
)

func TestIsImage(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsImage(platform.Attachment{Filename: "pic.jpg"}))
	assert.True(IsImage(platform.Attachment{Filename: "PIC.PNG"}))
	assert.True(IsImage(platform.Attachment{Filename: "anim.gif"}))
	assert.False(IsImage(platform.Attachment{Filename: "notes.txt"}))
	assert.False(IsImage(platform.Attachment{Filename: "clip.mp4"}))
}

func TestOCRClientExtractText(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/ocr/extract", r.URL.Path)
		var req ocrRequest
		assert.NoError(json.NewDecoder(r.Body).Decode(&req))
		assert.Equal("https://cdn.example.com/pic.png", req.URL)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "i will hurt you"}`))
	}))
	defer srv.Close()

	c := NewOCRClient(srv.URL, "")
	text, err := c.ExtractText(ctx, platform.Attachment{
		Filename: "pic.png",
		URL:      "https://cdn.example.com/pic.png",
	})
	assert.NoError(err)
	assert.Equal("i will hurt you", text)

	// non-image attachments short-circuit to empty text
	text, err = c.ExtractText(ctx, platform.Attachment{Filename: "notes.txt"})
	assert.NoError(err)
	assert.Equal("", text)
}
