package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/optic-storefront/internal/domain/appointment"
	"github.com/xenking/optic-storefront/internal/domain/auth"
	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/money"
	"github.com/xenking/optic-storefront/internal/domain/order"
	"github.com/xenking/optic-storefront/internal/domain/promo"
	"github.com/xenking/optic-storefront/internal/storage/memory"
	"github.com/xenking/optic-storefront/pkg/httpmiddleware"
)

// --- Mock implementations ---

type promoRepo struct {
	mu    sync.Mutex
	codes []promo.Code
	uses  map[string]int
}

func (m *promoRepo) FindActiveByCode(_ context.Context, code string) (*promo.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.codes {
		if m.codes[i].Code == code && m.codes[i].Active {
			c := m.codes[i]
			return &c, nil
		}
	}
	return nil, promo.ErrNotFound
}

func (m *promoRepo) IncrementUses(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uses == nil {
		m.uses = map[string]int{}
	}
	m.uses[code]++
	return nil
}

func (m *promoRepo) Create(_ context.Context, c *promo.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.codes {
		if existing.Code == c.Code {
			return promo.ErrDuplicate
		}
	}
	c.ID = "4a1c3f0e-8a52-4c3e-9a53-6f0b1f3d2c11"
	m.codes = append(m.codes, *c)
	return nil
}

func (m *promoRepo) List(context.Context) ([]promo.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.codes), nil
}

func (m *promoRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.codes {
		if m.codes[i].ID == id {
			m.codes = slices.Delete(m.codes, i, i+1)
			return nil
		}
	}
	return promo.ErrNotFound
}

type orderRepo struct {
	mu     sync.Mutex
	orders []order.Order
}

func (m *orderRepo) Create(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *orderRepo) find(id string) (*order.Order, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i], nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *orderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.find(id)
	if err != nil {
		return nil, err
	}
	out := *o
	return &out, nil
}

func (m *orderRepo) ListBySession(_ context.Context, sessionID string) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for _, o := range m.orders {
		if o.SessionID == sessionID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *orderRepo) List(_ context.Context, f order.ListFilter) ([]order.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for _, o := range m.orders {
		if f.Status == "" || o.Status == f.Status {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (m *orderRepo) UpdateStatus(_ context.Context, id string, status order.Status) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.find(id)
	if err != nil {
		return nil, err
	}
	o.Status = status
	out := *o
	return &out, nil
}

func (m *orderRepo) UpdatePayment(_ context.Context, id string, p order.Payment, status order.Status) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.find(id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus, o.PaymentRef, o.Status = p.Status, p.PaymentID, status
	out := *o
	return &out, nil
}

func (m *orderRepo) SumTotals(_ context.Context, _ time.Time, paidOnly bool) (money.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum money.Amount
	for _, o := range m.orders {
		if !paidOnly || o.PaymentStatus == order.PaymentPaid {
			sum += o.Total
		}
	}
	return sum, nil
}

func (m *orderRepo) CountByStatus(_ context.Context, status order.Status) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

type appointmentRepo struct {
	mu   sync.Mutex
	list []appointment.Appointment
}

func (m *appointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, *a)
	return nil
}

func (m *appointmentRepo) GetByID(_ context.Context, id string) (*appointment.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.list {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, appointment.ErrNotFound
}

func (m *appointmentRepo) ListBySession(_ context.Context, sessionID string) ([]appointment.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []appointment.Appointment
	for _, a := range m.list {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *appointmentRepo) List(_ context.Context, _ appointment.ListFilter) ([]appointment.Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.list), len(m.list), nil
}

func (m *appointmentRepo) Update(_ context.Context, id string, status appointment.Status, notes *string) (*appointment.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.list {
		if m.list[i].ID == id {
			m.list[i].Status = status
			if notes != nil {
				m.list[i].AdminNotes = *notes
			}
			a := m.list[i]
			return &a, nil
		}
	}
	return nil, appointment.ErrNotFound
}

func (m *appointmentRepo) CountOnDate(context.Context, time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.list), nil
}

type keyRepo map[string]*auth.APIKeyInfo

func (m keyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	if k, ok := m[hash]; ok {
		return k, nil
	}
	return nil, auth.ErrNotFound
}

// --- Fixtures ---

const (
	testPepper   = "pepper"
	adminKey     = "admin-secret"
	readOnlyKey  = "reader-secret"
	testSession  = "sess-1"
	otherSession = "sess-2"
)

var testProducts = []catalog.Product{
	{ID: "p1", Name: "Aviator Gold", Price: money.FromUnits(1299), MRP: money.FromUnits(1999), Category: catalog.CategoryFrames, Gender: catalog.GenderMen, Shape: "aviator", Colors: []string{"gold"}, Rating: 4.5, Images: []string{"img/p1.jpg"}, Badge: catalog.BadgeBestseller},
	{ID: "p2", Name: "Round Tortoise", Price: money.FromUnits(899), MRP: money.FromUnits(1499), Category: catalog.CategoryFrames, Gender: catalog.GenderWomen, Shape: "round", Colors: []string{"brown"}, Rating: 4.8, Images: []string{"img/p2.jpg"}, Badge: catalog.BadgeBestseller},
	{ID: "p3", Name: "Kids Flex", Price: money.FromUnits(699), MRP: money.FromUnits(999), Category: catalog.CategoryFrames, Gender: catalog.GenderUnisex, Shape: "rectangle", Colors: []string{"blue"}, Rating: 4.1},
	{ID: "p4", Name: "Wayfarer Shade", Price: money.FromUnits(2499), MRP: money.FromUnits(2999), Category: catalog.CategorySunglasses, Gender: catalog.GenderMen, Shape: "wayfarer", Colors: []string{"black"}, Rating: 4.3},
}

type testEnv struct {
	server       *httptest.Server
	catalogAdmin *catalogRepo
	promos       *promoRepo
	orders       *orderRepo
	appointments *appointmentRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		promos: &promoRepo{codes: []promo.Code{
			{ID: "9b2e7d4c-1f3a-4b6e-8c2d-5e7f9a1b3c4d", Code: "SAVE10", DiscountType: promo.DiscountPercent, Value: decimal.NewFromInt(10), Active: true},
			{ID: "0c5d8e1f-2a4b-4c6d-9e8f-1a2b3c4d5e6f", Code: "BIG500", DiscountType: promo.DiscountFixed, Value: decimal.NewFromInt(500), MinOrderValue: money.FromUnits(5000), Active: true},
		}},
		orders:       &orderRepo{},
		appointments: &appointmentRepo{},
		catalogAdmin: newCatalogRepo(testProducts),
	}
	keys := keyRepo{
		auth.HashKey([]byte(testPepper), adminKey):    {ID: "k1", KeyHash: auth.HashKey([]byte(testPepper), adminKey), Scopes: []string{auth.ScopeAdmin}},
		auth.HashKey([]byte(testPepper), readOnlyKey): {ID: "k2", KeyHash: auth.HashKey([]byte(testPepper), readOnlyKey), Scopes: []string{"read"}},
	}
	appointments := appointment.NewService(env.appointments)
	calc := promo.NewCalculator(env.promos)

	h, err := New(Config{ImageBaseURL: "https://cdn.example/"}, Deps{
		Catalog:      catalog.NewService(memory.NewCatalog(testProducts)),
		CatalogAdmin: catalog.NewAdmin(env.catalogAdmin, env.catalogAdmin),
		Sessions:     memory.NewKV(),
		Promos:       calc,
		PromoAdmin:   env.promos,
		Orders:       order.NewService(env.orders, calc, env.promos, nil, appointments),
		Appointments: appointments,
		Auth:         auth.NewAuthenticator(keys, []byte(testPepper)),
	}, noop.NewMeterProvider())
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Register(mux)
	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)
	return env
}

type response struct {
	Status int
	Body   map[string]any
	List   []any
}

func (env *testEnv) do(t *testing.T, method, path, session, body string, headers ...string) response {
	t.Helper()
	req, err := http.NewRequest(method, env.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if session != "" {
		req.Header.Set(httpmiddleware.SessionHeader, session)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out := response{Status: resp.StatusCode}
	if resp.StatusCode == http.StatusNoContent {
		return out
	}
	var raw any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	switch v := raw.(type) {
	case map[string]any:
		out.Body = v
	case []any:
		out.List = v
	}
	return out
}

func items(t *testing.T, v any) []map[string]any {
	t.Helper()
	list, ok := v.([]any)
	require.True(t, ok, "expected array, got %T", v)
	out := make([]map[string]any, len(list))
	for i, it := range list {
		out[i] = it.(map[string]any)
	}
	return out
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
		ids   []string
		total float64
	}{
		{name: "DefaultFrames", query: "", ids: []string{"p1", "p2", "p3"}, total: 3},
		{name: "GenderIncludesUnisex", query: "?gender=women", ids: []string{"p2", "p3"}, total: 2},
		{name: "PriceAsc", query: "?sort=price-asc", ids: []string{"p3", "p2", "p1"}, total: 3},
		{name: "MaxPrice", query: "?maxPrice=900", ids: []string{"p2", "p3"}, total: 2},
		{name: "ShapeList", query: "?shape=round,aviator", ids: []string{"p1", "p2"}, total: 2},
		{name: "RepeatedFacetCountsOnce", query: "?shape=round&shape=round", ids: []string{"p2"}, total: 1},
		{name: "Category", query: "?category=sunglasses", ids: []string{"p4"}, total: 1},
		{name: "OutOfRangePage", query: "?page=5", ids: []string{}, total: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, "/api/products"+tt.query, "", "")
			require.Equal(t, http.StatusOK, resp.Status)

			ids := []string{}
			for _, p := range items(t, resp.Body["items"]) {
				ids = append(ids, p["id"].(string))
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.total, resp.Body["total"])
		})
	}
}

func TestListProducts_BadQuery(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/products?maxPrice=cheap", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "maxPrice must be a non-negative integer", resp.Body["message"])
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/products/p1", "", "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Aviator Gold", resp.Body["name"])
	assert.Equal(t, 1299.0, resp.Body["price"])
	assert.Equal(t, "bestseller", resp.Body["badge"])
	assert.Equal(t, []any{"https://cdn.example/img/p1.jpg"}, resp.Body["images"])

	resp = env.do(t, http.MethodGet, "/api/products/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, float64(404), resp.Body["code"])
}

func TestFeaturedProducts(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/products/featured?limit=1", "", "")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Len(t, resp.List, 1)
	assert.Equal(t, "p2", resp.List[0].(map[string]any)["id"])
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "X-Session-ID header is required", resp.Body["message"])
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/cart/items", testSession,
		`{"productId":"p1","lensType":"singleVision","addons":["blueCut","unknown"],"qty":1}`)
	require.Equal(t, http.StatusCreated, resp.Status)
	lines := items(t, resp.Body["items"])
	require.Len(t, lines, 1)
	assert.Equal(t, "p1-singleVision", lines[0]["key"])
	assert.Equal(t, 2099.0, lines[0]["lineTotal"])
	assert.Equal(t, 2099.0, resp.Body["subtotal"])
	assert.Equal(t, 0.0, resp.Body["delivery"])
	assert.Equal(t, true, resp.Body["freeDelivery"])

	// Same product and lens merges into the existing line.
	resp = env.do(t, http.MethodPost, "/api/cart/items", testSession, `{"productId":"p1","lensType":"singleVision"}`)
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, 2.0, resp.Body["itemCount"])

	resp = env.do(t, http.MethodPatch, "/api/cart/items/p1-singleVision", testSession, `{"qty":0}`)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 2.0, resp.Body["itemCount"], "qty below 1 is ignored")

	resp = env.do(t, http.MethodPatch, "/api/cart/items/p1-singleVision", testSession, `{"qty":1,"addons":[]}`)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1799.0, resp.Body["subtotal"])

	resp = env.do(t, http.MethodPatch, "/api/cart/items/missing", testSession, `{"qty":1}`)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	// Another session sees its own empty cart.
	resp = env.do(t, http.MethodGet, "/api/cart", otherSession, "")
	assert.Empty(t, resp.Body["items"])

	resp = env.do(t, http.MethodDelete, "/api/cart/items/p1-singleVision", testSession, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body["items"])
	assert.Equal(t, 0.0, resp.Body["subtotal"])
}

func TestAddCartItem_Errors(t *testing.T) {
	env := newTestEnv(t)

	for _, tt := range []struct {
		name   string
		body   string
		status int
	}{
		{name: "UnknownProduct", body: `{"productId":"nope"}`, status: http.StatusNotFound},
		{name: "MissingProduct", body: `{"qty":2}`, status: http.StatusBadRequest},
		{name: "InvalidJSON", body: `{"productId":`, status: http.StatusBadRequest},
		{name: "EmptyBody", body: "", status: http.StatusBadRequest},
	} {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/cart/items", testSession, tt.body)
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestValidatePromo(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/cart/items", testSession, `{"productId":"p2","qty":2}`)

	tests := []struct {
		name     string
		body     string
		valid    bool
		discount float64
		message  string
	}{
		{name: "CartSubtotal", body: `{"code":"save10"}`, valid: true, discount: 180},
		{name: "ExplicitSubtotal", body: `{"code":"SAVE10","subtotal":1010}`, valid: true, discount: 101},
		{name: "Unknown", body: `{"code":"NOPE"}`, message: promo.MsgInvalid},
		{name: "MinOrder", body: `{"code":"BIG500"}`, message: "Minimum order ₹5000 required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/promo/validate", testSession, tt.body)
			require.Equal(t, http.StatusOK, resp.Status)
			assert.Equal(t, tt.valid, resp.Body["valid"])
			if tt.valid {
				assert.Equal(t, tt.discount, resp.Body["discount"])
			} else {
				assert.Equal(t, tt.message, resp.Body["message"])
			}
		})
	}
}

func TestValidatePromo_AmountRange(t *testing.T) {
	env := newTestEnv(t)
	for _, body := range []string{
		`{"code":"SAVE10","subtotal":1e20}`,
		`{"code":"SAVE10","subtotal":-5}`,
		`{"code":"SAVE10","subtotal":1000000001}`,
	} {
		resp := env.do(t, http.MethodPost, "/api/promo/validate", testSession, body)
		assert.Equal(t, http.StatusBadRequest, resp.Status, body)
		assert.Equal(t, "subtotal must be between 0 and 1000000000", resp.Body["message"], body)
	}
}

const shippingJSON = `"shipping":{"name":"Asha","phone":"9876543210","address":"12 MG Road","city":"Pune","pincode":"411001"}`

func TestPlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/cart/items", testSession, `{"productId":"p2"}`)

	resp := env.do(t, http.MethodPost, "/api/orders", testSession, `{"promoCode":"SAVE10",`+shippingJSON+`}`)
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, 899.0, resp.Body["subtotal"])
	assert.Equal(t, 99.0, resp.Body["deliveryCharge"])
	assert.Equal(t, 90.0, resp.Body["discount"])
	assert.Equal(t, 908.0, resp.Body["total"])
	assert.Equal(t, "SAVE10", resp.Body["promoCode"])
	assert.Equal(t, "pending", resp.Body["status"])
	assert.Equal(t, 1, env.promos.uses["SAVE10"])

	cart := env.do(t, http.MethodGet, "/api/cart", testSession, "")
	assert.Empty(t, cart.Body["items"], "cart is cleared after checkout")

	list := env.do(t, http.MethodGet, "/api/orders", testSession, "")
	require.Equal(t, http.StatusOK, list.Status)
	assert.Len(t, list.List, 1)
}

func TestPlaceOrder_Errors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/orders", testSession, `{`+shippingJSON+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Cart is empty", resp.Body["message"])

	env.do(t, http.MethodPost, "/api/cart/items", testSession, `{"productId":"p3"}`)

	resp = env.do(t, http.MethodPost, "/api/orders", testSession, `{"promoCode":"BIG500",`+shippingJSON+`}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "Minimum order ₹5000 required", resp.Body["message"])

	resp = env.do(t, http.MethodPost, "/api/orders", testSession, `{"shipping":{"name":"Asha"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	// Failed checkouts keep the cart.
	cart := env.do(t, http.MethodGet, "/api/cart", testSession, "")
	assert.Len(t, cart.Body["items"], 1)
}

func TestWishlist(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/wishlist/p1", testSession, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, true, resp.Body["saved"])

	env.do(t, http.MethodPost, "/api/wishlist/p3", testSession, "")
	resp = env.do(t, http.MethodGet, "/api/wishlist", testSession, "")
	assert.Equal(t, []any{"p1", "p3"}, resp.Body["productIds"])

	resp = env.do(t, http.MethodPost, "/api/wishlist/p1", testSession, "")
	assert.Equal(t, false, resp.Body["saved"])
	assert.Equal(t, 1.0, resp.Body["count"])

	resp = env.do(t, http.MethodPost, "/api/wishlist/nope", testSession, "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestAppointments(t *testing.T) {
	env := newTestEnv(t)
	date := time.Now().AddDate(0, 0, 7).Format(time.DateOnly)
	body := `{"name":"Ravi","phone":"9812345678","preferredDate":"` + date + `","preferredSlot":"` + appointment.Slots[0] + `"}`

	resp := env.do(t, http.MethodPost, "/api/appointments", testSession, body)
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "eye-test", resp.Body["kind"])
	assert.Equal(t, "pending", resp.Body["status"])
	assert.Equal(t, date, resp.Body["preferredDate"])
	id := resp.Body["id"].(string)

	resp = env.do(t, http.MethodGet, "/api/appointments", testSession, "")
	assert.Len(t, resp.List, 1)

	resp = env.do(t, http.MethodDelete, "/api/appointments/"+id, otherSession, "")
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = env.do(t, http.MethodDelete, "/api/appointments/"+id, testSession, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "cancelled", resp.Body["status"])

	resp = env.do(t, http.MethodDelete, "/api/appointments/"+id, testSession, "")
	assert.Equal(t, http.StatusConflict, resp.Status)

	resp = env.do(t, http.MethodDelete, "/api/appointments/not-a-uuid", testSession, "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestBookAppointment_Validation(t *testing.T) {
	env := newTestEnv(t)
	date := time.Now().AddDate(0, 0, 1).Format(time.DateOnly)

	for _, tt := range []struct {
		name    string
		body    string
		message string
	}{
		{name: "Phone", body: `{"name":"Ravi","phone":"12345","preferredDate":"` + date + `","preferredSlot":"` + appointment.Slots[0] + `"}`, message: "Enter a valid 10-digit phone number"},
		{name: "DateFormat", body: `{"name":"Ravi","phone":"9812345678","preferredDate":"01/02/2030"}`, message: "date must be formatted as YYYY-MM-DD"},
		{name: "Slot", body: `{"name":"Ravi","phone":"9812345678","preferredDate":"` + date + `","preferredSlot":"midnight"}`, message: "Please select a time slot"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/appointments", testSession, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Status)
			assert.Equal(t, tt.message, resp.Body["message"])
		})
	}
}

func TestAdmin_Auth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/promo-codes", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = env.do(t, http.MethodGet, "/api/admin/promo-codes", "", "", APIKeyHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = env.do(t, http.MethodGet, "/api/admin/promo-codes", "", "", APIKeyHeader, readOnlyKey)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = env.do(t, http.MethodGet, "/api/admin/promo-codes", "", "", APIKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Len(t, resp.List, 2)
}

func TestAdmin_PromoCodes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/promo-codes", "",
		`{"code":"welcome15","discountType":"percent","value":15,"minOrderValue":1000,"expiresAt":null}`,
		APIKeyHeader, adminKey)
	require.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "WELCOME15", resp.Body["code"])
	assert.Equal(t, true, resp.Body["active"])
	assert.Nil(t, resp.Body["expiresAt"])

	resp = env.do(t, http.MethodPost, "/api/admin/promo-codes", "",
		`{"code":"WELCOME15","discountType":"percent","value":5}`, APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusConflict, resp.Status)

	resp = env.do(t, http.MethodPost, "/api/admin/promo-codes", "",
		`{"code":"HALF","discountType":"percent","value":150}`, APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "percent discount must not exceed 100", resp.Body["message"])

	resp = env.do(t, http.MethodPost, "/api/admin/promo-codes", "",
		`{"code":"HUGE","discountType":"fixed","value":10,"minOrderValue":1e20}`, APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "minOrderValue must be between 0 and 1000000000", resp.Body["message"])

	resp = env.do(t, http.MethodPost, "/api/admin/promo-codes", "",
		`{"code":"HUGE","discountType":"fixed","value":1e20}`, APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "discount value is too large", resp.Body["message"])

	resp = env.do(t, http.MethodDelete, "/api/admin/promo-codes/9b2e7d4c-1f3a-4b6e-8c2d-5e7f9a1b3c4d", "", "", APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusNoContent, resp.Status)

	resp = env.do(t, http.MethodDelete, "/api/admin/promo-codes/9b2e7d4c-1f3a-4b6e-8c2d-5e7f9a1b3c4d", "", "", APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestAdmin_Orders(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/cart/items", testSession, `{"productId":"p1"}`)
	placed := env.do(t, http.MethodPost, "/api/orders", testSession, `{`+shippingJSON+`}`)
	require.Equal(t, http.StatusCreated, placed.Status)
	id := placed.Body["id"].(string)
	path := "/api/admin/orders/" + id

	resp := env.do(t, http.MethodPatch, path, "", `{"status":"lost"}`, APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = env.do(t, http.MethodPatch, path, "", `{"payment":{"paymentId":"pay_1","status":"paid"}}`, APIKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "confirmed", resp.Body["status"])
	assert.Equal(t, "paid", resp.Body["paymentStatus"])

	resp = env.do(t, http.MethodPatch, path, "", `{"status":"dispatched"}`, APIKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "dispatched", resp.Body["status"])

	resp = env.do(t, http.MethodPatch, path, "", `{}`, APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = env.do(t, http.MethodGet, "/api/admin/orders?status=dispatched", "", "", APIKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1.0, resp.Body["total"])

	resp = env.do(t, http.MethodGet, "/api/admin/orders?page=0", "", "", APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = env.do(t, http.MethodGet, "/api/admin/stats", "", "", APIKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1398.0, resp.Body["todayRevenue"], "1299 plus 99 delivery")
	assert.Equal(t, 1398.0, resp.Body["monthRevenue"])
	assert.Equal(t, 0.0, resp.Body["pendingOrders"])
}

func TestAdmin_Appointments(t *testing.T) {
	env := newTestEnv(t)
	date := time.Now().AddDate(0, 0, 2).Format(time.DateOnly)
	booked := env.do(t, http.MethodPost, "/api/appointments", testSession,
		`{"name":"Ravi","phone":"9812345678","kind":"frame-fitting","preferredDate":"`+date+`","preferredSlot":"`+appointment.Slots[1]+`"}`)
	require.Equal(t, http.StatusCreated, booked.Status)

	resp := env.do(t, http.MethodPatch, "/api/admin/appointments/"+booked.Body["id"].(string), "",
		`{"status":"confirmed","adminNotes":"Bring old glasses"}`, APIKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "confirmed", resp.Body["status"])
	assert.Equal(t, "Bring old glasses", resp.Body["adminNotes"])

	resp = env.do(t, http.MethodGet, "/api/admin/appointments?date="+date, "", "", APIKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 1.0, resp.Body["total"])

	resp = env.do(t, http.MethodGet, "/api/admin/appointments?date=tomorrow", "", "", APIKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestErrorStatus(t *testing.T) {
	for _, tt := range []struct {
		err    error
		status int
		msg    string
	}{
		{err: &order.ValidationError{Field: "shipping.name", Message: "required"}, status: http.StatusBadRequest, msg: "required"},
		{err: errors.Wrap(&order.PromoError{Code: "X", Message: promo.MsgExpired}, "place"), status: http.StatusUnprocessableEntity, msg: promo.MsgExpired},
		{err: errors.Wrap(order.ErrNotFound, "get"), status: http.StatusNotFound, msg: "Order not found"},
		{err: appointment.ErrNotCancellable, status: http.StatusConflict},
		{err: &catalog.ValidationError{Message: "name is required"}, status: http.StatusBadRequest, msg: "name is required"},
		{err: errors.Wrap(catalog.ErrCategoryInUse, "delete"), status: http.StatusConflict, msg: "Category still has products"},
		{err: catalog.ErrDuplicate, status: http.StatusConflict, msg: "Product already exists"},
		{err: catalog.ErrCategoryNotFound, status: http.StatusNotFound, msg: "Category not found"},
		{err: auth.ErrUnauthorized, status: http.StatusUnauthorized},
		{err: errors.New("db down"), status: http.StatusInternalServerError, msg: "internal server error"},
	} {
		status, msg := errorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		if tt.msg != "" {
			assert.Equal(t, tt.msg, msg)
		}
	}
}
