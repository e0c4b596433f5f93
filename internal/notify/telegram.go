// Package notify delivers workspace notifications to a Telegram chat.
package notify

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

	"golang.org/x/time/rate"

	"github.com/studiodesk/studio-backend/internal/metrics"
)

const defaultAPIURL = "https://api.telegram.org"

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

type TelegramConfig struct {
	Token      string
	ChatID     string
	RatePerSec float64
	APIURL     string
	Timeout    time.Duration
}

// Telegram sends HTML messages through the Bot API sendMessage method.
type Telegram struct {
	cfg        TelegramConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Telegram{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (t *Telegram) Send(ctx context.Context, text string) (err error) {
	defer func() {
		metrics.Notifications.WithLabelValues("telegram", metrics.Result(err)).Inc()
	}()

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}

	data, err := json.Marshal(sendMessageRequest{ChatID: t.cfg.ChatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.cfg.APIURL, "/"), t.cfg.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call telegram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, string(body))
	}
	if !out.OK {
		return fmt.Errorf("telegram rejected message: %s", out.Description)
	}
	return nil
}

// Nop logs messages instead of sending them. It is used when no bot is
// configured.
type Nop struct {
	Log *slog.Logger
}

func (n Nop) Send(ctx context.Context, text string) error {
	l := n.Log
	if l == nil {
		l = slog.Default()
	}
	l.DebugContext(ctx, "notification not sent, telegram not configured", "length", len(text))
	metrics.Notifications.WithLabelValues("nop", "success").Inc()
	return nil
}

// New returns a Telegram sender when token and chat are set, Nop otherwise.
func New(cfg TelegramConfig, log *slog.Logger) Sender {
	if cfg.Token == "" || cfg.ChatID == "" {
		return Nop{Log: log}
	}
	return NewTelegram(cfg)
}
