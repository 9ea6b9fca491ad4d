// Package payment adapts external payment providers to one Gateway interface.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type EventKind string

const (
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
	EventRefunded  EventKind = "refunded"
	EventUnknown   EventKind = "unknown"
)

// Metadata travels with the provider-side payment and comes back in webhooks.
type Metadata struct {
	OrderID  string
	ItemID   string
	BuyerID  string
	SellerID string
}

func (m Metadata) asMap() map[string]string {
	return map[string]string{
		"order_id":  m.OrderID,
		"item_id":   m.ItemID,
		"buyer_id":  m.BuyerID,
		"seller_id": m.SellerID,
	}
}

type Intent struct {
	ProviderOrderID string
	ClientSecret    string
}

// Event is a provider webhook payload reduced to what the order lifecycle needs.
type Event struct {
	ID              string
	Type            string
	Kind            EventKind
	OrderID         string
	ProviderOrderID string
	PaymentID       string
}

type Gateway interface {
	Name() string
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, md Metadata) (*Intent, error)
	VerifyClientConfirmation(providerOrderID, paymentID, signature string) bool
	ParseEvent(body []byte) (*Event, error)
}

type Config struct {
	Provider  string
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

func New(cfg Config) (Gateway, error) {
	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		hc.Timeout = 10 * time.Second
	}
	switch strings.ToLower(cfg.Provider) {
	case ProviderRazorpay, "":
		return NewRazorpay(cfg.KeyID, cfg.KeySecret, cfg.BaseURL, hc), nil
	case ProviderStripe:
		return NewStripe(cfg.KeySecret, cfg.BaseURL, hc), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

// genericKind maps the provider-neutral event names every adapter accepts.
func genericKind(eventType string) (EventKind, bool) {
	switch eventType {
	case "payment.succeeded":
		return EventSucceeded, true
	case "payment.failed":
		return EventFailed, true
	case "payment.refunded":
		return EventRefunded, true
	}
	return EventUnknown, false
}

// envelope holds the metadata locations used by provider-neutral payloads.
type envelope struct {
	Type     string  `json:"type"`
	Metadata noteMap `json:"metadata"`
	Data     struct {
		Metadata noteMap `json:"metadata"`
		Object   struct {
			Metadata noteMap `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// parseEnvelope reads the neutral metadata locations. Provider payloads are
// free to use another shape there, in which case the envelope stays empty.
func parseEnvelope(body []byte) envelope {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}
	}
	return env
}

// noteMap is provider metadata. Razorpay sends an empty set as [] and
// merchants may store numbers, so anything but an object decodes to nil and
// non-string values keep their JSON text.
type noteMap map[string]string

func (n *noteMap) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		*n = nil
		return nil
	}
	out := make(noteMap, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		if string(v) != "null" {
			out[k] = string(v)
		}
	}
	*n = out
	return nil
}

func (e envelope) metadata() map[string]string {
	return firstNonEmpty(e.Metadata, e.Data.Metadata, e.Data.Object.Metadata)
}

func firstNonEmpty(maps ...map[string]string) map[string]string {
	for _, m := range maps {
		if len(m) > 0 {
			return m
		}
	}
	return nil
}

func orderIDFrom(md map[string]string) string {
	if v := md["order_id"]; v != "" {
		return v
	}
	return md["orderId"]
}
