// Package webhook delivers notifications to a Slack-compatible incoming
// webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"assetnexus/internal/notifications"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"
)

// SignatureHeader carries a keyed BLAKE2b-256 MAC of the request body when a
// signing key is configured.
const SignatureHeader = "X-Assetnexus-Signature"

var ErrMissingURL = errors.New("webhook: endpoint URL is required")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook responded %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	Name          string
	URL           string
	Username      string
	Channel       string
	IconEmoji     string
	SigningKey    string
	RatePerSecond float64
	Burst         int
	MaxTries      uint
	RetryInterval time.Duration
	Timeout       time.Duration
	// MaxRetryAfter caps how long a 429 Retry-After may delay the next try.
	// Longer requests fail the send with the 429 StatusError.
	MaxRetryAfter time.Duration
	// MaxElapsed bounds one Send across all tries and waits.
	MaxElapsed time.Duration
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "webhook"
	}
	if c.Username == "" {
		c.Username = "Asset Nexus"
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 1
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.MaxTries == 0 {
		c.MaxTries = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 500 * time.Millisecond
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MaxRetryAfter <= 0 {
		c.MaxRetryAfter = 2 * time.Second
	}
	if c.MaxElapsed <= 0 {
		tries := time.Duration(c.MaxTries)
		c.MaxElapsed = tries*c.Timeout + (tries-1)*c.MaxRetryAfter
	}
}

// Sender posts notifications to a single webhook URL.
type Sender struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ notifications.Channel = (*Sender)(nil)

func New(cfg Config, logger *slog.Logger) (*Sender, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if len(cfg.SigningKey) > blake2b.Size {
		return nil, fmt.Errorf("webhook: signing key longer than %d bytes", blake2b.Size)
	}
	cfg.applyDefaults()

	s := &Sender{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:  logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("webhook circuit breaker state changed",
				"channel", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return s, nil
}

func (s *Sender) Name() string { return s.cfg.Name }

// Send posts n, retrying 5xx, 429 and transport errors with exponential
// backoff. Other 4xx responses fail immediately.
func (s *Sender) Send(ctx context.Context, n notifications.Notification) error {
	body, err := json.Marshal(s.message(n))
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = s.cfg.RetryInterval

		var last *StatusError
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			status, err := s.post(ctx, body)
			if status != nil {
				last = status
			}
			return struct{}{}, err
		},
			backoff.WithBackOff(b),
			backoff.WithMaxTries(s.cfg.MaxTries),
			backoff.WithMaxElapsedTime(s.cfg.MaxElapsed),
		)

		var retryAfter *backoff.RetryAfterError
		if errors.As(err, &retryAfter) && last != nil {
			err = last
		}
		return nil, err
	})
	if err != nil {
		s.logger.Warn("webhook delivery failed",
			"channel", s.cfg.Name,
			"notification", string(n.Kind),
			"notification_id", n.ID.String(),
			"error", err,
		)
		return err
	}

	s.logger.Debug("webhook delivered", "notification", string(n.Kind), "notification_id", n.ID.String())
	return nil
}

// post makes one delivery attempt. The returned StatusError is set for every
// non-2xx response; the error tells backoff whether to try again.
func (s *Sender) post(ctx context.Context, body []byte) (*StatusError, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.SigningKey != "" {
		sig, err := Sign([]byte(s.cfg.SigningKey), body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set(SignatureHeader, sig)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
		if err != nil || secs <= 0 {
			return statusErr, statusErr
		}
		if time.Duration(secs)*time.Second > s.cfg.MaxRetryAfter {
			s.logger.Warn("webhook rate limited beyond retry budget",
				"retry_after_seconds", secs,
				"max_retry_after", s.cfg.MaxRetryAfter.String(),
			)
			return statusErr, backoff.Permanent(statusErr)
		}
		s.logger.Warn("webhook rate limited", "retry_after_seconds", secs)
		return statusErr, backoff.RetryAfter(secs)
	case resp.StatusCode >= 500:
		return statusErr, statusErr
	default:
		return statusErr, backoff.Permanent(statusErr)
	}
}

// Sign returns the value of SignatureHeader for body.
func Sign(key, body []byte) (string, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return "", err
	}
	h.Write(body)
	return "blake2b-256=" + hex.EncodeToString(h.Sum(nil)), nil
}
