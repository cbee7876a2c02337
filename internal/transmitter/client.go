package transmitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const redirectPath = "/api/trans/redirect/telegram"

// Client пересылает текст в сервис рассылки, который сам ходит в Telegram.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type redirectRequest struct {
	Text        string  `json:"text"`
	TelegramIDs []int64 `json:"telegram_ids"`
	Silent      bool    `json:"silent"`
}

// Deliver: ответ не 2xx считается ошибкой, повторов нет.
func (c *Client) Deliver(ctx context.Context, text string, telegramIDs []int64, silent bool) error {
	body, err := json.Marshal(redirectRequest{Text: text, TelegramIDs: telegramIDs, Silent: silent})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+redirectPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: http %d: %s", redirectPath, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
