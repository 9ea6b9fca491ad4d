package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/freelance_market/internal/notify"
	"github.com/Skotchmaster/freelance_market/internal/payment"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/service"
	"github.com/Skotchmaster/freelance_market/internal/testutil"
	"github.com/Skotchmaster/freelance_market/pkg/tokens"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testWebhookSecret = "whsec_test"
)

type testEnv struct {
	E    *echo.Echo
	Repo *repo.GormRepo

	providerDown atomic.Bool
	providerSeq  atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t, repo.Migrate)
	r := repo.New(db)
	env := &testEnv{Repo: r}

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if env.providerDown.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"description":"key_secret leaked in upstream trace"}}`))
			return
		}
		id := fmt.Sprintf("order_T%d", env.providerSeq.Add(1))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "status": "created"})
	}))
	t.Cleanup(provider.Close)

	gw := payment.NewRazorpay("rzp_key", "rzp_secret", provider.URL, provider.Client())
	emitter := notify.NewEmitter(r, time.Second)

	e := echo.New()
	Register(e, &Deps{
		DB: db,
		OrderHandler: &OrderHTTP{Svc: &service.OrderService{
			Repo: r, Gateway: gw, Notifier: emitter, Topic: "order_events", PaymentTimeout: 2 * time.Second,
		}},
		WebhookHandler: &WebhookHTTP{Svc: &service.WebhookService{
			Repo: r, Gateway: gw, Notifier: emitter, Secret: testWebhookSecret, Topic: "order_events",
		}},
		ItemHandler:         &ItemHTTP{Svc: &service.ItemService{Repo: r, DefaultCurrency: "INR"}},
		NotificationHandler: &NotificationHTTP{Svc: &service.NotificationService{Repo: r}},
		AdminHandler:        &AdminHTTP{Svc: &service.AdminService{Repo: r}},
		JWTSecret:           []byte(testJWTSecret),
	})
	env.E = e
	return env
}

func bearer(t *testing.T, id uuid.UUID, role string) string {
	t.Helper()
	tok, err := tokens.NewAccessToken([]byte(testJWTSecret), id.String(), role, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

// do sends body as-is when it is []byte and as JSON otherwise.
func (env *testEnv) do(t *testing.T, method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case []byte:
		buf = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
