// Package api serves the storefront and back-office JSON endpoints.
package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/safar/printshop/internal/auth"
	"github.com/safar/printshop/internal/events"
	"github.com/safar/printshop/internal/mailer"
	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/payment"
	"github.com/safar/printshop/internal/store"
	"github.com/sirupsen/logrus"
)

type Options struct {
	DefaultCurrency string
	ContactInbox    string
	AllowedOrigin   string

	// LookupUser resolves the account behind a session token. Defaults to
	// the users table.
	LookupUser func(ctx context.Context, id string) (*models.User, error)
}

type Server struct {
	db       *sqlx.DB
	auth     *auth.Manager
	gateway  payment.Gateway
	mailer   mailer.Sender
	events   events.Publisher
	log      logrus.FieldLogger
	validate *validator.Validate
	opts     Options

	lookupUser func(ctx context.Context, id string) (*models.User, error)
}

func NewServer(db *sqlx.DB, authManager *auth.Manager, gateway payment.Gateway, sender mailer.Sender,
	publisher events.Publisher, log logrus.FieldLogger, opts Options) *Server {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "usd"
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	lookupUser := opts.LookupUser
	if lookupUser == nil {
		lookupUser = func(ctx context.Context, id string) (*models.User, error) {
			return store.GetUser(ctx, db, id)
		}
	}

	return &Server{
		db:       db,
		auth:     authManager,
		gateway:  gateway,
		mailer:   sender,
		events:   publisher,
		log:      log,
		validate: newValidator(),
		opts:     opts,

		lookupUser: lookupUser,
	}
}

// Handler wires every route behind the logging, recovery, CORS and
// authentication middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth())

	mux.HandleFunc("POST /auth/register", s.handleRegister())
	mux.HandleFunc("POST /auth/login", s.handleLogin())

	mux.HandleFunc("GET /users/me", s.requireAuth(s.handleMe()))
	mux.HandleFunc("GET /users", s.requireAdmin(s.handleListUsers()))
	mux.HandleFunc("GET /users/{id}", s.requireAdmin(s.handleGetUser()))
	mux.HandleFunc("PATCH /users/{id}/role", s.requireAdmin(s.handleUpdateUserRole()))

	mux.HandleFunc("GET /customers", s.requireAdmin(s.handleListCustomers()))
	mux.HandleFunc("POST /customers", s.requireAdmin(s.handleCreateCustomer()))
	mux.HandleFunc("GET /customers/{id}", s.requireAdmin(s.handleGetCustomer()))
	mux.HandleFunc("PUT /customers/{id}", s.requireAdmin(s.handleUpdateCustomer()))
	mux.HandleFunc("DELETE /customers/{id}", s.requireAdmin(s.handleDeleteCustomer()))

	mux.HandleFunc("GET /addresses", s.requireAuth(s.handleListAddresses()))
	mux.HandleFunc("POST /addresses", s.requireAuth(s.handleCreateAddress()))
	mux.HandleFunc("GET /addresses/{id}", s.requireAuth(s.handleGetAddress()))
	mux.HandleFunc("PUT /addresses/{id}", s.requireAuth(s.handleUpdateAddress()))
	mux.HandleFunc("DELETE /addresses/{id}", s.requireAuth(s.handleDeleteAddress()))

	mux.HandleFunc("GET /categories", s.handleListCategories())
	mux.HandleFunc("GET /categories/{ref}", s.handleGetCategory())
	mux.HandleFunc("POST /categories", s.requireAdmin(s.handleCreateCategory()))
	mux.HandleFunc("PUT /categories/{ref}", s.requireAdmin(s.handleUpdateCategory()))
	mux.HandleFunc("DELETE /categories/{ref}", s.requireAdmin(s.handleDeleteCategory()))

	mux.HandleFunc("GET /products", s.handleListProducts())
	mux.HandleFunc("GET /products/{ref}", s.handleGetProduct())
	mux.HandleFunc("POST /products", s.requireAdmin(s.handleCreateProduct()))
	mux.HandleFunc("PUT /products/{ref}", s.requireAdmin(s.handleUpdateProduct()))
	mux.HandleFunc("DELETE /products/{ref}", s.requireAdmin(s.handleDeleteProduct()))

	mux.HandleFunc("GET /cart", s.requireAuth(s.handleGetCart()))
	mux.HandleFunc("PUT /cart", s.requireAuth(s.handleSaveCart()))
	mux.HandleFunc("DELETE /cart", s.requireAuth(s.handleClearCart()))

	mux.HandleFunc("POST /orders", s.requireAuth(s.handleCreateOrder()))
	mux.HandleFunc("GET /orders", s.requireAuth(s.handleListOrders()))
	mux.HandleFunc("GET /orders/{id}", s.requireAuth(s.handleGetOrder()))
	mux.HandleFunc("PUT /orders/{id}", s.requireAdmin(s.handleReplaceOrder()))
	mux.HandleFunc("PATCH /orders/{id}/status", s.requireAdmin(s.handleUpdateOrderStatus()))
	mux.HandleFunc("DELETE /orders/{id}", s.requireAdmin(s.handleDeleteOrder()))

	mux.HandleFunc("POST /payments/intent", s.requireAuth(s.handleCreatePaymentIntent()))
	mux.HandleFunc("POST /payments/confirm", s.requireAuth(s.handleConfirmPayment()))

	mux.HandleFunc("POST /contact", s.handleContact())

	mux.HandleFunc("GET /admin/summary", s.requireAdmin(s.handleSummary()))

	return s.logRequests(s.recoverPanics(s.cors(s.authenticate(mux))))
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.log.WithError(err).Error("health check failed")
			s.respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
