package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// Services bundles what the router dispatches to. Nil services leave their
// routes unregistered.
type Services struct {
	Checkout Checkouter
	Holds    HoldPlacer
	Tickets  TicketDownloader
	Refunds  Refunder
	Payments PaymentConfirmer
	Catalog  CatalogAdmin
	DB       Pinger
}

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	// AdminToken guards /admin routes as a bearer token when set.
	AdminToken  string
	Logger      *zap.Logger
}

// NewRouter wires every endpoint behind tracing, CORS and request logging.
func NewRouter(svcs Services, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()
	if cfg.ServiceName != "" {
		r.Use(otelmux.Middleware(cfg.ServiceName))
	}

	r.HandleFunc("/health", HandleHealth(svcs.DB)).Methods(http.MethodGet)

	if svcs.Checkout != nil {
		r.HandleFunc("/bookables/{id}/checkout", HandleCheckout(svcs.Checkout)).Methods(http.MethodPost)
	}
	if svcs.Holds != nil {
		r.HandleFunc("/bookables/{id}/hold", HandlePlaceHold(svcs.Holds)).Methods(http.MethodPost)
		r.HandleFunc("/bookables/{id}/hold", HandleListHolds(svcs.Holds)).Methods(http.MethodGet)
	}
	if svcs.Tickets != nil {
		r.HandleFunc("/bookings/{id}/tickets/pdf", HandleTicketDocument(svcs.Tickets)).Methods(http.MethodGet)
	}
	if svcs.Refunds != nil {
		r.HandleFunc("/bookings/{id}/refund", HandleRequestRefund(svcs.Refunds)).Methods(http.MethodPost)
		r.HandleFunc("/bookings/{id}/refund/process", HandleProcessRefund(svcs.Refunds)).Methods(http.MethodPost)
	}
	if svcs.Payments != nil {
		r.HandleFunc("/payments/{provider}/callback", HandlePaymentCallback(svcs.Payments)).Methods(http.MethodPost)
	}

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(RequireBearer(cfg.AdminToken))
	if svcs.Payments != nil {
		admin.HandleFunc("/payments/confirm", HandleConfirmPayment(svcs.Payments)).Methods(http.MethodPost)
	}
	if svcs.Catalog != nil {
		admin.HandleFunc("/bookables", HandleAdminBookables(svcs.Catalog)).Methods(http.MethodGet, http.MethodPost)
		admin.HandleFunc("/bookables/{id}/status", HandleAdminBookableStatus(svcs.Catalog)).Methods(http.MethodPost)
		admin.HandleFunc("/bookables/{id}/tiers", HandleAdminTiers(svcs.Catalog)).Methods(http.MethodGet, http.MethodPost)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         600,
	})

	return RequestLogger(c.Handler(r), cfg.Logger)
}
