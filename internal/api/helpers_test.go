package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/api"
	"github.com/safar/printshop/internal/auth"
	"github.com/safar/printshop/internal/config"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/events"
	"github.com/safar/printshop/internal/mailer"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/payment"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var testAuth = auth.NewManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})

type fakeGateway struct {
	mu       sync.Mutex
	requests []payment.IntentRequest
	intents  map[string]*payment.Intent
	err      error
}

func (g *fakeGateway) CreateIntent(_ context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	id := fmt.Sprintf("pi_test_%d", len(g.requests))
	return &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret_abc",
		Status:       "requires_payment_method",
		Amount:       req.Amount,
		Currency:     req.Currency,
	}, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}
	intent, ok := g.intents[id]
	if !ok {
		return nil, errors.New("no such payment intent")
	}
	return intent, nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderStatusEvent
}

func (p *recordingPublisher) PublishOrderStatus(_ context.Context, event events.OrderStatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type harness struct {
	handler   http.Handler
	gateway   *fakeGateway
	mail      *recordingSender
	publisher *recordingPublisher

	mu    sync.Mutex
	users map[string]*models.User
}

// newHarness builds the handler over db. With a nil db, accounts are
// resolved from the harness's own user map (see register).
func newHarness(db *sqlx.DB) *harness {
	log, _ := test.NewNullLogger()
	h := &harness{
		gateway:   &fakeGateway{intents: map[string]*payment.Intent{}},
		mail:      &recordingSender{},
		publisher: &recordingPublisher{},
		users:     map[string]*models.User{},
	}

	opts := api.Options{
		DefaultCurrency: "usd",
		ContactInbox:    "hello@printshop.test",
	}
	if db == nil {
		opts.LookupUser = h.lookupUser
	}

	h.handler = api.NewServer(db, testAuth, h.gateway, h.mail, h.publisher, log, opts).Handler()
	return h
}

func (h *harness) lookupUser(_ context.Context, id string) (*models.User, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	user, ok := h.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// register stores user in the harness's account map and returns a token
// for it.
func (h *harness) register(t *testing.T, user *models.User) string {
	t.Helper()

	h.mu.Lock()
	copied := *user
	h.users[user.ID] = &copied
	h.mu.Unlock()

	return tokenFor(t, user)
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := testAuth.Issue(user)
	require.NoError(t, err)
	return token
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (int, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return rec.Code, resp
}

func decodeData(t *testing.T, resp response, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
