// Package notify delivers asynchronous capture notices to the requester.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Kind identifies a notice.
type Kind string

const (
	KindCaptured       Kind = "captured"
	KindDownloadFailed Kind = "download_failed"
	KindRemoved        Kind = "removed"
	KindTooLarge       Kind = "too_large"
)

// Notice is sent to the user that requested a capture when its ingestion
// finishes or its quote is cleaned up.
type Notice struct {
	Kind    Kind     `json:"kind"`
	QuoteID int64    `json:"quote_id"`
	Scope   string   `json:"scope"`
	User    string   `json:"user"`
	Tags    []string `json:"tags,omitempty"` // set on download_failed
	Text    string   `json:"text,omitempty"`
}

// Notifier delivers notices. Delivery failures are the implementation's
// concern; callers never see them.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Log writes notices to the global logger.
type Log struct{}

// Notify implements Notifier.
func (Log) Notify(_ context.Context, n Notice) {
	log.Info().
		Str("kind", string(n.Kind)).
		Int64("quote_id", n.QuoteID).
		Str("scope", n.Scope).
		Str("user", n.User).
		Msg("notice")
}

// Webhook POSTs notices as JSON.
type Webhook struct {
	client *resty.Client
	url    string
}

// NewWebhook creates a webhook notifier for url.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Webhook{client: c, url: url}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, n Notice) {
	resp, err := w.client.R().SetContext(ctx).SetBody(n).Post(w.url)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("webhook returned %s", resp.Status())
	}
	if err != nil {
		log.Warn().Err(err).Str("kind", string(n.Kind)).Int64("quote_id", n.QuoteID).Msg("notice delivery failed")
	}
}

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, nt := range m {
		nt.Notify(ctx, n)
	}
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Kinds returns the kinds of the recorded notices in order.
func (r *Recorder) Kinds() []Kind {
	notices := r.Notices()
	kinds := make([]Kind, len(notices))
	for i, n := range notices {
		kinds[i] = n.Kind
	}
	return kinds
}
