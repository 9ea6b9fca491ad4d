package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/notify"
	"github.com/Skotchmaster/freelance_market/internal/payment"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/testutil"
)

const (
	testWebhookSecret = "whsec_test"
	testKeySecret     = "rzp_secret"
	testTopic         = "order_events"
)

type fakeGateway struct {
	mu       sync.Mutex
	calls    int
	lastMeta payment.Metadata
	err      error
	block    bool
	parser   *payment.Razorpay
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{parser: payment.NewRazorpay("rzp_key", testKeySecret, "", nil)}
}

func (g *fakeGateway) Name() string { return payment.ProviderRazorpay }

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string, md payment.Metadata) (*payment.Intent, error) {
	g.mu.Lock()
	g.calls++
	g.lastMeta = md
	err, block := g.err, g.block
	g.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", apperr.ErrPaymentProvider, ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	id := "order_" + md.OrderID[:8]
	return &payment.Intent{ProviderOrderID: id, ClientSecret: "cs_" + id}, nil
}

func (g *fakeGateway) VerifyClientConfirmation(providerOrderID, paymentID, signature string) bool {
	return g.parser.VerifyClientConfirmation(providerOrderID, paymentID, signature)
}

func (g *fakeGateway) ParseEvent(body []byte) (*payment.Event, error) {
	return g.parser.ParseEvent(body)
}

type testEnv struct {
	Repo    *repo.GormRepo
	Gateway *fakeGateway
	Orders  *OrderService
	Hooks   *WebhookService
	Items   *ItemService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(testutil.NewDB(t, repo.Migrate))
	gw := newFakeGateway()
	emitter := notify.NewEmitter(r, time.Second)

	return &testEnv{
		Repo:    r,
		Gateway: gw,
		Orders: &OrderService{
			Repo: r, Gateway: gw, Notifier: emitter, Topic: testTopic, PaymentTimeout: time.Second,
		},
		Hooks: &WebhookService{
			Repo: r, Gateway: gw, Notifier: emitter, Secret: testWebhookSecret, Topic: testTopic,
		},
		Items: &ItemService{Repo: r, DefaultCurrency: "INR"},
	}
}

func (e *testEnv) seedItem(t *testing.T, author uuid.UUID, price int64) *models.Item {
	t.Helper()
	item := &models.Item{AuthorID: author, Title: "Logo design", Price: price, Currency: "INR"}
	require.NoError(t, e.Repo.CreateItem(context.Background(), item))
	return item
}

// placeOrder creates a PENDING order between a fresh buyer and seller.
func (e *testEnv) placeOrder(t *testing.T, price int64) (*models.Order, Actor, Actor) {
	t.Helper()
	buyer, seller := Actor{ID: uuid.New()}, Actor{ID: uuid.New()}
	item := e.seedItem(t, seller.ID, price)
	order, _, err := e.Orders.CreateOrder(context.Background(), buyer, item.ID)
	require.NoError(t, err)
	return order, buyer, seller
}

func (e *testEnv) notifications(t *testing.T, user uuid.UUID) []models.Notification {
	t.Helper()
	_, items, err := e.Repo.ListNotifications(context.Background(), user, false, 0, 100)
	require.NoError(t, err)
	return items
}

func (e *testEnv) status(t *testing.T, id uuid.UUID) models.OrderStatus {
	t.Helper()
	o, err := e.Repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func (e *testEnv) pendingEvents(t *testing.T, typ models.OrderEventType) int {
	t.Helper()
	msgs, err := e.Repo.PendingOutbox(context.Background(), 1000)
	require.NoError(t, err)
	n := 0
	for _, m := range msgs {
		if containsType(m.Payload, typ) {
			n++
		}
	}
	return n
}

func containsType(payload []byte, typ models.OrderEventType) bool {
	return strings.Contains(string(payload), `"type":"`+string(typ)+`"`)
}

func sign(body string) ([]byte, string) {
	b := []byte(body)
	return b, payment.Sign(testWebhookSecret, b)
}

func succeededEvent(eventID string, orderID uuid.UUID) string {
	return fmt.Sprintf(`{"id":%q,"type":"payment.succeeded","metadata":{"orderId":%q}}`, eventID, orderID)
}

func failedEvent(eventID string, orderID uuid.UUID) string {
	return fmt.Sprintf(`{"id":%q,"type":"payment.failed","metadata":{"orderId":%q}}`, eventID, orderID)
}

func repoFilterBuyer(id uuid.UUID) repo.OrderFilter {
	return repo.OrderFilter{BuyerID: &id}
}
