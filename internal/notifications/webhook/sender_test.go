package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"assetnexus/internal/events"
	"assetnexus/internal/inventory"
	"assetnexus/internal/notifications"
	"assetnexus/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSender(t *testing.T, url string, mutate func(*Config)) *Sender {
	t.Helper()
	cfg := Config{
		Name:          settings.ChannelWebhook,
		URL:           url,
		Channel:       "#it-assets",
		RatePerSecond: 1000,
		Burst:         10,
		MaxTries:      3,
		RetryInterval: time.Millisecond,
		Timeout:       time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg, testLogger())
	require.NoError(t, err)
	return s
}

// sendCheckin routes a real checkin event through a router so the payload
// is built the same way as in production.
func sendCheckin(t *testing.T, s *Sender) error {
	t.Helper()
	router := notifications.NewRouter(settings.NewGate(settings.ChannelWebhook), testLogger(), s)
	return router.Handle(context.Background(), events.NewCheckedIn(
		inventory.NewLicenseSeat(inventory.NewLicense("Photoshop", 5)),
		inventory.NewUser("jdoe", "Jane", "Doe"),
		inventory.NewUser("admin", "Ada", "Admin"),
		"seat reclaimed",
	))
}

func TestSenderPostsSlackMessage(t *testing.T) {
	var got message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get(SignatureHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	require.NoError(t, sendCheckin(t, newTestSender(t, srv.URL, nil)))

	assert.Equal(t, "Ada Admin checked in license seat Photoshop from user Jane Doe: seat reclaimed", got.Text)
	assert.Equal(t, "#it-assets", got.Channel)
	assert.Equal(t, "Asset Nexus", got.Username)
	require.Len(t, got.Attachments, 1)
	a := got.Attachments[0]
	assert.Equal(t, "License Seat Checked In", a.Title)
	assert.Equal(t, string(notifications.CheckinLicenseSeatNotification), a.Footer)
	assert.Equal(t, []field{
		{Title: "Item", Value: "Photoshop", Short: true},
		{Title: "From", Value: "Jane Doe", Short: true},
		{Title: "By", Value: "Ada Admin", Short: true},
		{Title: "Note", Value: "seat reclaimed"},
	}, a.Fields)
}

func TestSenderSignsBody(t *testing.T) {
	key := "0123456789abcdef"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		want, err := Sign([]byte(key), body)
		require.NoError(t, err)
		assert.Equal(t, want, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	s := newTestSender(t, srv.URL, func(c *Config) { c.SigningKey = key })
	require.NoError(t, sendCheckin(t, s))
}

func TestSenderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try later", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, sendCheckin(t, newTestSender(t, srv.URL, nil)))
	assert.EqualValues(t, 3, calls.Load())
}

func TestSenderGivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := sendCheckin(t, newTestSender(t, srv.URL, func(c *Config) { c.MaxTries = 2 }))
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSenderDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := sendCheckin(t, newTestSender(t, srv.URL, nil))
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "invalid_payload")
	assert.EqualValues(t, 1, calls.Load())
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{}, testLogger())
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = New(Config{URL: "http://example.invalid", SigningKey: string(make([]byte, 65))}, testLogger())
	assert.Error(t, err)

	s, err := New(Config{URL: "http://example.invalid"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "webhook", s.Name())
}

func TestSenderFailsFastWhenRetryAfterExceedsCap(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "4")
		http.Error(w, "rate_limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := newTestSender(t, srv.URL, func(c *Config) {
		c.MaxTries = 2
		c.Timeout = 100 * time.Millisecond
	})

	start := time.Now()
	err := sendCheckin(t, s)

	assert.Less(t, time.Since(start), time.Second)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSenderHonoursShortRetryAfterAndReportsStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		http.Error(w, "rate_limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := newTestSender(t, srv.URL, func(c *Config) {
		c.MaxTries = 2
		c.MaxRetryAfter = 2 * time.Second
	})

	start := time.Now()
	err := sendCheckin(t, s)

	assert.GreaterOrEqual(t, time.Since(start), time.Second)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.EqualValues(t, 2, calls.Load())
}

func TestSenderStopsAtMaxElapsed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSender(t, srv.URL, func(c *Config) {
		c.MaxTries = 10
		c.RetryInterval = 200 * time.Millisecond
		c.MaxElapsed = 300 * time.Millisecond
	})

	start := time.Now()
	err := sendCheckin(t, s)

	assert.Less(t, time.Since(start), time.Second)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.LessOrEqual(t, calls.Load(), int32(3))
}

func TestConfigDefaultsBoundElapsedTime(t *testing.T) {
	cfg := Config{MaxTries: 3, Timeout: time.Second}
	cfg.applyDefaults()

	assert.Equal(t, 2*time.Second, cfg.MaxRetryAfter)
	assert.Equal(t, 3*time.Second+2*2*time.Second, cfg.MaxElapsed)
}
