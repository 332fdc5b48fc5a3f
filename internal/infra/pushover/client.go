package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultURL = "https://api.pushover.net/1/messages.json"
	title      = "Stock Skill"

	// DefaultCooldown limits alerts while the price provider is down.
	DefaultCooldown = 15 * time.Minute
)

// Client sends operator alerts. Messages arriving within the cooldown of
// the last delivered alert are dropped.
type Client struct {
	token      string
	userKey    string
	url        string
	cooldown   time.Duration
	httpClient *http.Client

	mu       sync.Mutex
	lastSent time.Time
	now      func() time.Time
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, defaultURL, DefaultCooldown)
}

func NewClientWithURL(token, userKey, endpoint string, cooldown time.Duration) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		url:        endpoint,
		cooldown:   cooldown,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (c *Client) Notify(ctx context.Context, message string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}
	if !c.reserve() {
		return nil
	}

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", message)
	data.Set("title", title)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: %s", resp.Status)
	}

	return nil
}

// reserve claims the next delivery slot. A failed delivery still counts so a
// broken Pushover account does not add a second call to every request.
func (c *Client) reserve() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastSent.IsZero() && now.Sub(c.lastSent) < c.cooldown {
		return false
	}
	c.lastSent = now
	return true
}
