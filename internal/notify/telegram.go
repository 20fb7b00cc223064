package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram posts messages through the Bot API sendMessage method.
type Telegram struct {
	APIURL string
	Token  string
	ChatID string
	Client *http.Client
}

// NewTelegram returns nil unless both token and chat id are set.
func NewTelegram(apiURL, token, chatID string) *Telegram {
	if token == "" || chatID == "" {
		return nil
	}
	if apiURL == "" {
		apiURL = defaultTelegramAPI
	}
	return &Telegram{
		APIURL: strings.TrimRight(apiURL, "/"),
		Token:  token,
		ChatID: chatID,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, title, text string) error {
	if t == nil {
		return errors.New("telegram disabled")
	}
	msg := telegramMessage{
		ChatID:    t.ChatID,
		Text:      "<b>" + html.EscapeString(title) + "</b>\n" + html.EscapeString(text),
		ParseMode: "HTML",
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	url := t.APIURL + "/bot" + t.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		// the url carries the token
		return errors.New("telegram: bad api url")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return errors.New("telegram: request failed")
	}
	defer resp.Body.Close()

	var reply telegramReply
	_ = json.NewDecoder(resp.Body).Decode(&reply)
	if resp.StatusCode/100 != 2 || !reply.OK {
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, reply.Description)
	}
	return nil
}
