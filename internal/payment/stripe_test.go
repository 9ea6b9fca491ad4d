package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripe_CreatePaymentIntent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "o-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2500", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "o-1", r.PostForm.Get("metadata[order_id]"))
		assert.Equal(t, "b-1", r.PostForm.Get("metadata[buyer_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret_abc"}`))
	}))
	t.Cleanup(srv.Close)

	st := NewStripe("sk_test", srv.URL, srv.Client())
	intent, err := st.CreatePaymentIntent(context.Background(), 2500, "USD", Metadata{OrderID: "o-1", BuyerID: "b-1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ProviderOrderID)
	assert.Equal(t, "pi_1_secret_abc", intent.ClientSecret)
}

func TestStripe_ParseEvent(t *testing.T) {
	t.Parallel()

	st := NewStripe("sk", "", nil)

	ev, err := st.ParseEvent([]byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","latest_charge":"ch_1","metadata":{"order_id":"o-1"}}}}`))
	require.NoError(t, err)
	assert.Equal(t, EventSucceeded, ev.Kind)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, "o-1", ev.OrderID)
	assert.Equal(t, "pi_1", ev.ProviderOrderID)
	assert.Equal(t, "ch_1", ev.PaymentID)

	ev, err = st.ParseEvent([]byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_1","metadata":{"order_id":"o-1"}}}}`))
	require.NoError(t, err)
	assert.Equal(t, EventRefunded, ev.Kind)
	assert.Equal(t, "pi_1", ev.ProviderOrderID)

	ev, err = st.ParseEvent([]byte(`{"id":"evt_3","type":"payment_intent.canceled","data":{"object":{"id":"pi_2","object":"payment_intent"}}}`))
	require.NoError(t, err)
	assert.Equal(t, EventFailed, ev.Kind)
	assert.Empty(t, ev.OrderID)

	ev, err = st.ParseEvent([]byte(`{"id":"evt_4","type":"customer.created","data":{"object":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, EventUnknown, ev.Kind)
}

func TestNew(t *testing.T) {
	t.Parallel()

	gw, err := New(Config{Provider: "stripe", KeySecret: "sk", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, ProviderStripe, gw.Name())

	gw, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, ProviderRazorpay, gw.Name())

	_, err = New(Config{Provider: "paypal"})
	assert.Error(t, err)
}
