package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LINE push messages carry at most 5000 characters of text.
const lineMaxText = 5000

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LineNotifier delivers text through the LINE Messaging API push endpoint.
type LineNotifier struct {
	session *http.Client
	token   string
	baseURL string
}

func NewLineNotifier(channelToken, baseURL string) (*LineNotifier, error) {
	if strings.TrimSpace(channelToken) == "" {
		return nil, errors.New("LINE channel access token is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.line.me"
	}
	return &LineNotifier{
		session: &http.Client{Timeout: 10 * time.Second},
		token:   channelToken,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Send pushes text to the LINE user recipient. It is not retried.
func (n *LineNotifier) Send(ctx context.Context, recipient string, text string) error {
	if strings.TrimSpace(recipient) == "" {
		return errors.New("line push: recipient is empty")
	}
	if r := []rune(text); len(r) > lineMaxText {
		text = string(r[:lineMaxText])
	}

	payload, err := json.Marshal(linePushRequest{
		To:       recipient,
		Messages: []lineMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("line push: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v2/bot/message/push", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("line push: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.session.Do(req)
	if err != nil {
		return fmt.Errorf("line push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line push: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
