package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
)

const razorpayAPI = "https://api.razorpay.com"

type Razorpay struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

func NewRazorpay(keyID, keySecret, baseURL string, hc *http.Client) *Razorpay {
	if baseURL == "" {
		baseURL = razorpayAPI
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Razorpay{keyID: keyID, keySecret: keySecret, baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (r *Razorpay) Name() string { return ProviderRazorpay }

type razorpayOrderReq struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

type razorpayOrderResp struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (r *Razorpay) CreatePaymentIntent(ctx context.Context, amount int64, currency string, md Metadata) (*Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be > 0", apperr.ErrValidation)
	}
	raw, err := json.Marshal(razorpayOrderReq{
		Amount:   amount,
		Currency: strings.ToUpper(currency),
		Receipt:  md.OrderID,
		Notes:    md.asMap(),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/orders", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: razorpay create order: %v", apperr.ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: razorpay create order: status %d", apperr.ErrPaymentProvider, resp.StatusCode)
	}

	var out razorpayOrderResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.ID == "" {
		return nil, fmt.Errorf("%w: razorpay create order: bad response", apperr.ErrPaymentProvider)
	}
	// Checkout is opened with the order id and the public key id.
	return &Intent{ProviderOrderID: out.ID, ClientSecret: out.ID}, nil
}

func (r *Razorpay) VerifyClientConfirmation(providerOrderID, paymentID, signature string) bool {
	if providerOrderID == "" || paymentID == "" {
		return false
	}
	return VerifySignature(r.keySecret, ConfirmationPayload(providerOrderID, paymentID), signature)
}

type razorpayEntity struct {
	ID      string  `json:"id"`
	OrderID string  `json:"order_id"`
	Notes   noteMap `json:"notes"`
}

type razorpayEvent struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity razorpayEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity razorpayEntity `json:"entity"`
		} `json:"order"`
		Refund *struct {
			Entity struct {
				ID        string  `json:"id"`
				PaymentID string  `json:"payment_id"`
				Notes     noteMap `json:"notes"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

func (r *Razorpay) ParseEvent(body []byte) (*Event, error) {
	var in razorpayEvent
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("%w: webhook body: %v", apperr.ErrValidation, err)
	}
	env := parseEnvelope(body)
	if in.Event == "" {
		in.Event = env.Type
	}

	ev := &Event{ID: in.ID, Type: in.Event, Kind: EventUnknown}
	switch in.Event {
	case "payment.captured", "order.paid":
		ev.Kind = EventSucceeded
	case "payment.failed":
		ev.Kind = EventFailed
	case "refund.processed":
		ev.Kind = EventRefunded
	default:
		if k, ok := genericKind(in.Event); ok {
			ev.Kind = k
		}
	}

	notes := env.metadata()
	if p := in.Payload.Payment; p != nil {
		ev.ProviderOrderID = p.Entity.OrderID
		ev.PaymentID = p.Entity.ID
		if len(notes) == 0 {
			notes = p.Entity.Notes
		}
	}
	if o := in.Payload.Order; o != nil {
		if ev.ProviderOrderID == "" {
			ev.ProviderOrderID = o.Entity.ID
		}
		if len(notes) == 0 {
			notes = o.Entity.Notes
		}
	}
	if rf := in.Payload.Refund; rf != nil && len(notes) == 0 {
		notes = rf.Entity.Notes
	}
	ev.OrderID = orderIDFrom(notes)
	return ev, nil
}
