package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpay_CreatePaymentIntent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)

		var body razorpayOrderReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 2500, body.Amount)
		assert.Equal(t, "INR", body.Currency)
		assert.Equal(t, "o-1", body.Notes["order_id"])
		assert.Equal(t, "s-1", body.Notes["seller_id"])

		_ = json.NewEncoder(w).Encode(razorpayOrderResp{ID: "order_RZP1", Status: "created"})
	}))
	t.Cleanup(srv.Close)

	rp := NewRazorpay("rzp_key", "rzp_secret", srv.URL, srv.Client())
	intent, err := rp.CreatePaymentIntent(context.Background(), 2500, "inr", Metadata{OrderID: "o-1", ItemID: "i-1", BuyerID: "b-1", SellerID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, "order_RZP1", intent.ProviderOrderID)
	assert.Equal(t, "order_RZP1", intent.ClientSecret)
}

func TestRazorpay_CreatePaymentIntent_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"description":"Authentication failed with key rzp_secret"}}`))
	}))
	t.Cleanup(srv.Close)

	rp := NewRazorpay("rzp_key", "rzp_secret", srv.URL, srv.Client())

	_, err := rp.CreatePaymentIntent(context.Background(), 2500, "INR", Metadata{OrderID: "o-1"})
	require.ErrorIs(t, err, apperr.ErrPaymentProvider)
	assert.NotContains(t, err.Error(), "rzp_secret")

	_, err = rp.CreatePaymentIntent(context.Background(), 0, "INR", Metadata{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRazorpay_CreatePaymentIntent_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	rp := NewRazorpay("k", "s", srv.URL, &http.Client{Timeout: 50 * time.Millisecond})
	_, err := rp.CreatePaymentIntent(context.Background(), 100, "INR", Metadata{OrderID: "o"})
	assert.ErrorIs(t, err, apperr.ErrPaymentProvider)
}

func TestRazorpay_ParseEvent(t *testing.T) {
	t.Parallel()

	rp := NewRazorpay("k", "s", "", nil)

	tests := []struct {
		name      string
		body      string
		kind      EventKind
		orderID   string
		providerO string
	}{
		{
			name:      "payment captured",
			body:      `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_RZP1","notes":{"order_id":"o-1"}}}}}`,
			kind:      EventSucceeded,
			orderID:   "o-1",
			providerO: "order_RZP1",
		},
		{
			name:      "order paid",
			body:      `{"event":"order.paid","payload":{"order":{"entity":{"id":"order_RZP2","notes":{"order_id":"o-2"}}}}}`,
			kind:      EventSucceeded,
			orderID:   "o-2",
			providerO: "order_RZP2",
		},
		{
			name:      "payment failed",
			body:      `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_3","order_id":"order_RZP3","notes":{"order_id":"o-3"}}}}}`,
			kind:      EventFailed,
			orderID:   "o-3",
			providerO: "order_RZP3",
		},
		{
			name:    "refund processed",
			body:    `{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_1","notes":{"order_id":"o-4"}}}}}`,
			kind:    EventRefunded,
			orderID: "o-4",
		},
		{
			name:    "generic succeeded",
			body:    `{"id":"evt_1","type":"payment.succeeded","metadata":{"orderId":"o-5"}}`,
			kind:    EventSucceeded,
			orderID: "o-5",
		},
		{
			name:      "captured with empty notes array",
			body:      `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_6","order_id":"order_RZP6","notes":[]}}}}`,
			kind:      EventSucceeded,
			providerO: "order_RZP6",
		},
		{
			name:      "authorized with empty notes array",
			body:      `{"event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_7","order_id":"order_RZP7","notes":[]}}}}`,
			kind:      EventUnknown,
			providerO: "order_RZP7",
		},
		{
			name:      "order paid with empty notes on both entities",
			body:      `{"event":"order.paid","payload":{"payment":{"entity":{"id":"pay_8","order_id":"order_RZP8","notes":[]}},"order":{"entity":{"id":"order_RZP8","notes":[]}}}}`,
			kind:      EventSucceeded,
			providerO: "order_RZP8",
		},
		{
			name:    "refund with empty notes",
			body:    `{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_2","payment_id":"pay_2","notes":[]}}}}`,
			kind:    EventRefunded,
			orderID: "",
		},
		{
			name:      "numeric note values",
			body:      `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_9","order_id":"order_RZP9","notes":{"order_id":"o-9","attempt":2}}}}}`,
			kind:      EventSucceeded,
			orderID:   "o-9",
			providerO: "order_RZP9",
		},
		{
			name: "unknown type",
			body: `{"event":"subscription.charged"}`,
			kind: EventUnknown,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev, err := rp.ParseEvent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.orderID, ev.OrderID)
			assert.Equal(t, tt.providerO, ev.ProviderOrderID)
		})
	}

	_, err := rp.ParseEvent([]byte(`not json`))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestNoteMap_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want noteMap
	}{
		{name: "object", in: `{"order_id":"o-1"}`, want: noteMap{"order_id": "o-1"}},
		{name: "empty array", in: `[]`, want: nil},
		{name: "null", in: `null`, want: nil},
		{name: "mixed values", in: `{"a":"x","n":3,"z":null}`, want: noteMap{"a": "x", "n": "3"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got noteMap
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
