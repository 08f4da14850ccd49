package automod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// SlackNotifier mirrors incident activity to a slack channel via an
// "incoming webhook". The webhook must be already configured in the
// slack workplace.
type SlackNotifier struct {
	SlackWebhookURL string
}

func (n *SlackNotifier) SendIncidentOpened(ctx context.Context, inc *Incident) error {
	msg := fmt.Sprintf("⚠️ Moderation Incident %d Opened ⚠️\n", inc.ID)
	msg += fmt.Sprintf("Author: `%s`\n", inc.Offending.Author.Name)
	if inc.Reporter != nil {
		msg += fmt.Sprintf("Reported by: `%s`\n", inc.Reporter.Name)
	} else {
		msg += "Flagged automatically\n"
	}
	msg += fmt.Sprintf("Severity: `%s`\n", inc.Level.String())
	return n.sendSlackMsg(ctx, msg)
}

func (n *SlackNotifier) SendIncidentActions(ctx context.Context, inc *Incident, actions []string) error {
	msg := fmt.Sprintf("Moderation Incident %d Actions\n", inc.ID)
	msg += fmt.Sprintf("Author: `%s`\n", inc.Offending.Author.Name)
	msg += fmt.Sprintf("Actions: `%s`\n", strings.Join(actions, ", "))
	return n.sendSlackMsg(ctx, msg)
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	// loosely based on: https://golangcode.com/send-slack-messages-without-a-library/

	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := http.DefaultClient
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}
