// Package handler exposes the storefront over a JSON HTTP API.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/optic-storefront/internal/domain/appointment"
	"github.com/xenking/optic-storefront/internal/domain/auth"
	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/order"
	"github.com/xenking/optic-storefront/internal/domain/promo"
	"github.com/xenking/optic-storefront/internal/storage/session"
	"github.com/xenking/optic-storefront/pkg/httpmiddleware"
)

// APIKeyHeader carries the admin API key.
const APIKeyHeader = "api_key"

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	ImageBaseURL string
}

// Deps are the services the handler delegates to.
type Deps struct {
	Catalog      *catalog.Service
	CatalogAdmin *catalog.Admin
	Sessions     session.KV
	Promos       order.PromoValidator
	PromoAdmin   promo.Repository
	Orders       *order.Service
	Appointments *appointment.Service
	Auth         *auth.Authenticator
}

// Handler serves the storefront API.
type Handler struct {
	Deps
	imageBaseURL string

	cartMutations    metric.Int64Counter
	promoValidations metric.Int64Counter
	ordersPlaced     metric.Int64Counter
}

// New creates a Handler recording request counters through mp.
func New(cfg Config, deps Deps, mp metric.MeterProvider) (*Handler, error) {
	h := &Handler{
		Deps:         deps,
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
	}
	meter := mp.Meter("github.com/xenking/optic-storefront/internal/handler")
	var err error
	if h.cartMutations, err = meter.Int64Counter("storefront.cart.mutations",
		metric.WithDescription("Cart mutations by operation"),
	); err != nil {
		return nil, errors.Wrap(err, "cart mutations counter")
	}
	if h.promoValidations, err = meter.Int64Counter("storefront.promo.validations",
		metric.WithDescription("Promo code validations by outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "promo validations counter")
	}
	if h.ordersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed"),
	); err != nil {
		return nil, errors.Wrap(err, "orders placed counter")
	}
	return h, nil
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/featured", h.FeaturedProducts)
	mux.HandleFunc("GET /api/products/search", h.SearchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/lens-options", h.LensOptions)

	mux.HandleFunc("GET /api/cart", h.session(h.GetCart))
	mux.HandleFunc("POST /api/cart/items", h.session(h.AddCartItem))
	mux.HandleFunc("PATCH /api/cart/items/{key}", h.session(h.UpdateCartItem))
	mux.HandleFunc("DELETE /api/cart/items/{key}", h.session(h.RemoveCartItem))
	mux.HandleFunc("DELETE /api/cart", h.session(h.ClearCart))

	mux.HandleFunc("POST /api/promo/validate", h.session(h.ValidatePromo))

	mux.HandleFunc("POST /api/orders", h.session(h.PlaceOrder))
	mux.HandleFunc("GET /api/orders", h.session(h.ListOrders))

	mux.HandleFunc("GET /api/wishlist", h.session(h.GetWishlist))
	mux.HandleFunc("POST /api/wishlist/{productId}", h.session(h.ToggleWishlist))

	mux.HandleFunc("GET /api/appointments/slots", h.AppointmentSlots)
	mux.HandleFunc("GET /api/appointments", h.session(h.ListAppointments))
	mux.HandleFunc("POST /api/appointments", h.session(h.BookAppointment))
	mux.HandleFunc("DELETE /api/appointments/{id}", h.session(h.CancelAppointment))

	mux.HandleFunc("GET /api/admin/products", h.admin(h.AdminListProducts))
	mux.HandleFunc("POST /api/admin/products", h.admin(h.AdminCreateProduct))
	mux.HandleFunc("GET /api/admin/products/{id}", h.admin(h.AdminGetProduct))
	mux.HandleFunc("PATCH /api/admin/products/{id}", h.admin(h.AdminUpdateProduct))
	mux.HandleFunc("DELETE /api/admin/products/{id}", h.admin(h.AdminDeleteProduct))
	mux.HandleFunc("GET /api/admin/categories", h.admin(h.AdminListCategories))
	mux.HandleFunc("POST /api/admin/categories", h.admin(h.AdminCreateCategory))
	mux.HandleFunc("PATCH /api/admin/categories/{slug}", h.admin(h.AdminUpdateCategory))
	mux.HandleFunc("DELETE /api/admin/categories/{slug}", h.admin(h.AdminDeleteCategory))
	mux.HandleFunc("GET /api/admin/promo-codes", h.admin(h.ListPromoCodes))
	mux.HandleFunc("POST /api/admin/promo-codes", h.admin(h.CreatePromoCode))
	mux.HandleFunc("DELETE /api/admin/promo-codes/{id}", h.admin(h.DeletePromoCode))
	mux.HandleFunc("GET /api/admin/orders", h.admin(h.AdminListOrders))
	mux.HandleFunc("PATCH /api/admin/orders/{id}", h.admin(h.AdminUpdateOrder))
	mux.HandleFunc("GET /api/admin/appointments", h.admin(h.AdminListAppointments))
	mux.HandleFunc("PATCH /api/admin/appointments/{id}", h.admin(h.AdminUpdateAppointment))
	mux.HandleFunc("GET /api/admin/stats", h.admin(h.AdminStats))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sid string)

// session rejects requests without X-Session-ID.
func (h *Handler) session(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(httpmiddleware.SessionHeader))
		if sid == "" {
			httpmiddleware.WriteError(w, http.StatusBadRequest, "X-Session-ID header is required")
			return
		}
		next(w, r, sid)
	}
}

// admin requires an API key carrying the admin scope.
func (h *Handler) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := h.Auth.Authenticate(r.Context(), r.Header.Get(APIKeyHeader))
		if err != nil {
			fail(w, r, err)
			return
		}
		if !info.HasScope(auth.ScopeAdmin) {
			httpmiddleware.WriteError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	}
}

func (h *Handler) countCart(r *http.Request, op string) {
	h.cartMutations.Add(r.Context(), 1, metric.WithAttributes(attribute.String("op", op)))
}
