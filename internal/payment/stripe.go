package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
)

const stripeAPI = "https://api.stripe.com"

type Stripe struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func NewStripe(secretKey, baseURL string, hc *http.Client) *Stripe {
	if baseURL == "" {
		baseURL = stripeAPI
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Stripe{secretKey: secretKey, baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (s *Stripe) Name() string { return ProviderStripe }

func (s *Stripe) CreatePaymentIntent(ctx context.Context, amount int64, currency string, md Metadata) (*Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be > 0", apperr.ErrValidation)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range md.asMap() {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if md.OrderID != "" {
		req.Header.Set("Idempotency-Key", md.OrderID)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe create intent: %v", apperr.ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: stripe create intent: status %d", apperr.ErrPaymentProvider, resp.StatusCode)
	}

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.ID == "" {
		return nil, fmt.Errorf("%w: stripe create intent: bad response", apperr.ErrPaymentProvider)
	}
	return &Intent{ProviderOrderID: out.ID, ClientSecret: out.ClientSecret}, nil
}

// VerifyClientConfirmation uses the same intent|payment HMAC scheme as the
// checkout page, keyed with the secret key.
func (s *Stripe) VerifyClientConfirmation(providerOrderID, paymentID, signature string) bool {
	if providerOrderID == "" || paymentID == "" {
		return false
	}
	return VerifySignature(s.secretKey, ConfirmationPayload(providerOrderID, paymentID), signature)
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string  `json:"id"`
			Object        string  `json:"object"`
			PaymentIntent string  `json:"payment_intent"`
			LatestCharge  string  `json:"latest_charge"`
			Metadata      noteMap `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (s *Stripe) ParseEvent(body []byte) (*Event, error) {
	var in stripeEvent
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("%w: webhook body: %v", apperr.ErrValidation, err)
	}

	env := parseEnvelope(body)

	ev := &Event{ID: in.ID, Type: in.Type, Kind: EventUnknown}
	switch in.Type {
	case "payment_intent.succeeded":
		ev.Kind = EventSucceeded
	case "payment_intent.payment_failed", "payment_intent.canceled":
		ev.Kind = EventFailed
	case "charge.refunded":
		ev.Kind = EventRefunded
	default:
		if k, ok := genericKind(in.Type); ok {
			ev.Kind = k
		}
	}

	obj := in.Data.Object
	switch obj.Object {
	case "charge":
		ev.ProviderOrderID = obj.PaymentIntent
		ev.PaymentID = obj.ID
	default:
		ev.ProviderOrderID = obj.ID
		ev.PaymentID = obj.LatestCharge
	}

	ev.OrderID = orderIDFrom(firstNonEmpty(obj.Metadata, env.metadata()))
	return ev, nil
}
