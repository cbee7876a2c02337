package telegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	shortName  = "skedule_bot"
	authorName = "Skedule Publisher"
	authorURL  = "https://t.me/skedule_bot"
)

// Client публикует объявления страницами Telegraph.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Publish создаёт страницу и возвращает её url.
func (c *Client) Publish(ctx context.Context, title, htmlText string) (string, error) {
	nodes, err := HTMLToNodes(htmlText)
	if err != nil {
		return "", err
	}
	content, err := json.Marshal(nodes)
	if err != nil {
		return "", err
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	var page struct {
		URL string `json:"url"`
	}
	err = c.call(ctx, "createPage", url.Values{
		"access_token": {token},
		"title":        {title},
		"content":      {string(content)},
		"author_name":  {authorName},
		"author_url":   {authorURL},
	}, &page)
	if err != nil {
		return "", err
	}
	return page.URL, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	var acc struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.call(ctx, "createAccount", url.Values{
		"short_name":  {shortName},
		"author_name": {authorName},
		"author_url":  {authorURL},
	}, &acc); err != nil {
		return "", err
	}
	c.token = acc.AccessToken
	return c.token, nil
}

func (c *Client) call(ctx context.Context, method string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telegraph %s: http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var r apiResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("telegraph %s: decode: %w", method, err)
	}
	if !r.OK {
		// ошибки разбора содержимого приходят как CONTENT_* / *_INVALID
		if strings.HasPrefix(r.Error, "CONTENT") || strings.Contains(r.Error, "TAG") {
			return &InvalidHTMLError{Reason: r.Error}
		}
		return fmt.Errorf("telegraph %s: %s", method, r.Error)
	}
	return json.Unmarshal(r.Result, out)
}
