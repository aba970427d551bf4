package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/maktabat-alamal/storefront/internal/carousel"
	"github.com/maktabat-alamal/storefront/internal/cart"
	"github.com/maktabat-alamal/storefront/internal/contact"
	"github.com/maktabat-alamal/storefront/internal/docstore"
	"github.com/maktabat-alamal/storefront/internal/domain/auth"
	"github.com/maktabat-alamal/storefront/internal/domain/category"
	"github.com/maktabat-alamal/storefront/internal/domain/content"
	"github.com/maktabat-alamal/storefront/internal/domain/order"
	"github.com/maktabat-alamal/storefront/internal/domain/product"
	"github.com/maktabat-alamal/storefront/internal/mail"
	"github.com/maktabat-alamal/storefront/internal/storage/file"
)

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type env struct {
	routes   http.Handler
	products *product.Repository
	auth     *auth.Service
	sender   *fakeSender
	rotator  *carousel.Rotator
}

func newEnv(t *testing.T) *env {
	t.Helper()

	docs := docstore.NewMemory()
	productRepo := product.NewRepository(docs)
	categoryRepo := category.NewRepository(docs)
	contentRepo := content.NewRepository(docs)
	orderRepo := order.NewRepository(docs)
	accounts := auth.NewAccounts(docs)
	authSvc := auth.NewService(accounts, auth.NewMemorySessions(), []byte("test-secret"))

	slots, err := file.NewSlotFactory(t.TempDir())
	require.NoError(t, err)
	carts := cart.NewManager(slots, zaptest.NewLogger(t))

	sender := &fakeSender{}

	// Long interval so the timer never fires during a test.
	rotator := carousel.New(1, time.Hour)
	t.Cleanup(rotator.Stop)

	h := New(Deps{
		Products:   productRepo,
		Categories: categoryRepo,
		Content:    contentRepo,
		Orders:     order.NewService(productRepo, orderRepo),
		Carts:      carts,
		Contact:    contact.NewService(sender, "owner@maktabat-alamal.com"),
		Auth:       authSvc,
		Featured:   rotator,
	})

	return &env{
		routes:   h.Routes(),
		products: productRepo,
		auth:     authSvc,
		sender:   sender,
		rotator:  rotator,
	}
}

func (e *env) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.routes.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func (e *env) adminToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	sess, err := e.auth.CreateAccount(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, e.auth.SetAdmin(ctx, sess.AccountID, true))

	fresh, err := e.auth.SignIn(ctx, "admin@example.com", "password123")
	require.NoError(t, err)
	return fresh.Token
}

func (e *env) seedProduct(t *testing.T, p product.Product) string {
	t.Helper()
	id, err := e.products.Create(context.Background(), p)
	require.NoError(t, err)
	return id
}

// --- Products ---

func TestListProducts(t *testing.T) {
	e := newEnv(t)
	e.seedProduct(t, product.Product{Name: "كتاب", Category: "كتب", Price: decimal.New(10, 0)})
	e.seedProduct(t, product.Product{Name: "قلم", Category: "قرطاسية", Price: decimal.New(5, 0)})

	w := e.do(t, http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON[[]productResponse](t, w), 2)

	w = e.do(t, http.MethodGet, "/products?category=كتب", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON[[]productResponse](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "كتاب", got[0].Name)
}

func TestGetProduct(t *testing.T) {
	e := newEnv(t)
	id := e.seedProduct(t, product.Product{Name: "كتاب", Price: decimal.RequireFromString("12.50")})

	w := e.do(t, http.MethodGet, "/products/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeJSON[productResponse](t, w)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 12.5, got.Price)
	assert.NotNil(t, got.Images, "images serialize as [] not null")
}

func TestGetProduct_NotFound(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/products/nope", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeJSON[errorBody](t, w)
	assert.Equal(t, http.StatusNotFound, body.Code)
}

// --- Admin gate ---

func TestAdmin_RequiresToken(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/admin/products", map[string]string{"name": "x"}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_RejectsNonAdmin(t *testing.T) {
	e := newEnv(t)

	sess, err := e.auth.CreateAccount(context.Background(), "reader@example.com", "password123")
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/admin/products", map[string]string{"name": "x"}, sess.Token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_ProductCRUD(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)

	w := e.do(t, http.MethodPost, "/admin/products", map[string]any{
		"name":     "أطلس",
		"price":    120.0,
		"stock":    10,
		"category": "كتب",
		"images":   []string{"/img/atlas.jpg"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON[map[string]string](t, w)["id"]
	require.NotEmpty(t, id)

	w = e.do(t, http.MethodPut, "/admin/products/"+id, map[string]any{"stock": 5}, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/products/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON[productResponse](t, w)
	assert.Equal(t, 5, got.Stock)
	assert.Equal(t, "أطلس", got.Name, "patch leaves other fields alone")

	w = e.do(t, http.MethodDelete, "/admin/products/"+id, nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/products/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_ProductValidation(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)

	w := e.do(t, http.MethodPost, "/admin/products", map[string]any{"price": 10.0}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPost, "/admin/products", map[string]any{"name": "x", "price": -1.0}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// --- Categories ---

func TestCategories(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)

	w := e.do(t, http.MethodPost, "/admin/categories", map[string]string{"name": "كتب"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON[map[string]string](t, w)["id"]

	w = e.do(t, http.MethodGet, "/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON[[]categoryResponse](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "كتب", got[0].Name)

	w = e.do(t, http.MethodPut, "/admin/categories/"+id, map[string]string{"name": "كتب عربية"}, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodDelete, "/admin/categories/"+id, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

// --- Content ---

func TestContent(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)

	// Unwritten content reads back as zero values, not an error.
	w := e.do(t, http.MethodGet, "/content/aboutUs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	about := decodeJSON[content.AboutUs](t, w)
	assert.Empty(t, about.Title)

	w = e.do(t, http.MethodPut, "/admin/content/aboutUs", content.AboutUs{
		Title:       "مكتبة الأمل",
		Description: "وجهتكم للكتاب العربي",
	}, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/content/aboutUs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	about = decodeJSON[content.AboutUs](t, w)
	assert.Equal(t, "مكتبة الأمل", about.Title)

	w = e.do(t, http.MethodGet, "/content/bogus", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Cart ---

func createCart(t *testing.T, e *env) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/carts", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeJSON[cartResponse](t, w)
	require.NotEmpty(t, resp.CartID)
	require.Empty(t, resp.Items)
	return resp.CartID
}

func TestCartFlow(t *testing.T) {
	e := newEnv(t)
	pid := e.seedProduct(t, product.Product{
		Name:   "كتاب",
		Price:  decimal.RequireFromString("10.00"),
		Stock:  10,
		Images: []string{"/img/book.jpg"},
	})
	cartID := createCart(t, e)

	// Add twice: quantities merge into one line.
	w := e.do(t, http.MethodPost, "/carts/"+cartID+"/items", addItemRequest{ProductID: pid, Quantity: 2}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/carts/"+cartID+"/items", addItemRequest{ProductID: pid, Quantity: 1}, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON[cartResponse](t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.Equal(t, 3, resp.TotalItems)
	assert.Equal(t, 30.0, resp.TotalPrice)

	// Set an explicit quantity.
	w = e.do(t, http.MethodPut, "/carts/"+cartID+"/items/"+pid, updateItemRequest{Quantity: 5}, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeJSON[cartResponse](t, w)
	assert.Equal(t, 5, resp.Items[0].Quantity)

	// Zero quantity removes the line.
	w = e.do(t, http.MethodPut, "/carts/"+cartID+"/items/"+pid, updateItemRequest{Quantity: 0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeJSON[cartResponse](t, w)
	assert.Empty(t, resp.Items)
}

func TestCart_AddUnknownProduct(t *testing.T) {
	e := newEnv(t)
	cartID := createCart(t, e)

	w := e.do(t, http.MethodPost, "/carts/"+cartID+"/items", addItemRequest{ProductID: "nope", Quantity: 1}, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCart_Clear(t *testing.T) {
	e := newEnv(t)
	pid := e.seedProduct(t, product.Product{Name: "كتاب", Price: decimal.New(10, 0), Stock: 5})
	cartID := createCart(t, e)

	w := e.do(t, http.MethodPost, "/carts/"+cartID+"/items", addItemRequest{ProductID: pid, Quantity: 2}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodDelete, "/carts/"+cartID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[cartResponse](t, w)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.TotalItems)
}

func TestCart_RemoveItem(t *testing.T) {
	e := newEnv(t)
	pid := e.seedProduct(t, product.Product{Name: "كتاب", Price: decimal.New(10, 0), Stock: 5})
	cartID := createCart(t, e)

	w := e.do(t, http.MethodPost, "/carts/"+cartID+"/items", addItemRequest{ProductID: pid, Quantity: 2}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodDelete, "/carts/"+cartID+"/items/"+pid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeJSON[cartResponse](t, w).Items)
}

// --- Checkout ---

func TestCheckout(t *testing.T) {
	e := newEnv(t)
	pid := e.seedProduct(t, product.Product{
		Name:   "كتاب",
		Price:  decimal.RequireFromString("10.00"),
		Stock:  10,
		Images: []string{"/img/book.jpg"},
	})
	cartID := createCart(t, e)

	w := e.do(t, http.MethodPost, "/carts/"+cartID+"/items", addItemRequest{ProductID: pid, Quantity: 2}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/checkout", checkoutRequest{
		CartID:        cartID,
		Customer:      order.CustomerInfo{Name: "سارة", Email: "sara@example.com"},
		Shipping:      order.ShippingAddress{City: "الرياض", Country: "SA"},
		PaymentMethod: "cod",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	placed := decodeJSON[orderResponse](t, w)
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, 20.0, placed.TotalPrice)
	require.Len(t, placed.Items, 1)
	require.NotNil(t, placed.Items[0].ImageURL)
	assert.Equal(t, "/img/book.jpg", *placed.Items[0].ImageURL)

	// The cart is cleared after a successful checkout.
	w = e.do(t, http.MethodGet, "/carts/"+cartID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeJSON[cartResponse](t, w).Items)

	// Stock was decremented.
	w = e.do(t, http.MethodGet, "/products/"+pid, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8, decodeJSON[productResponse](t, w).Stock)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t)
	cartID := createCart(t, e)

	w := e.do(t, http.MethodPost, "/checkout", checkoutRequest{CartID: cartID}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCheckout_MissingCartID(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/checkout", checkoutRequest{}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// --- Orders admin ---

func TestAdmin_Orders(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)
	pid := e.seedProduct(t, product.Product{Name: "كتاب", Price: decimal.New(10, 0), Stock: 10})
	cartID := createCart(t, e)

	w := e.do(t, http.MethodPost, "/carts/"+cartID+"/items", addItemRequest{ProductID: pid, Quantity: 1}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/checkout", checkoutRequest{CartID: cartID}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := decodeJSON[orderResponse](t, w).ID

	w = e.do(t, http.MethodGet, "/admin/orders", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON[[]orderResponse](t, w), 1)

	w = e.do(t, http.MethodPut, "/admin/orders/"+orderID+"/status", statusRequest{Status: order.StatusShipped}, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/admin/orders/"+orderID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.StatusShipped, decodeJSON[orderResponse](t, w).Status)

	w = e.do(t, http.MethodPut, "/admin/orders/"+orderID+"/status", statusRequest{Status: "refunded"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodDelete, "/admin/orders/"+orderID, nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/admin/orders/"+orderID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Contact ---

func TestContact(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/contact", contactRequest{
		Name:    "أحمد",
		Email:   "ahmed@example.com",
		Message: "مرحبا",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON[map[string]string](t, w)
	assert.Equal(t, "تم استلام رسالتك بنجاح وإرسالها!", body["message"])
	assert.Len(t, e.sender.sent, 1)
}

func TestContact_Validation(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/contact", contactRequest{Email: "a@b.c", Message: "hi"}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, e.sender.sent)
}

func TestContact_DeliveryFailure(t *testing.T) {
	e := newEnv(t)
	e.sender.err = errors.New("relay unreachable")

	w := e.do(t, http.MethodPost, "/contact", contactRequest{
		Name:    "أحمد",
		Email:   "a@b.c",
		Message: "hi",
	}, "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// --- Featured carousel ---

func TestFeatured(t *testing.T) {
	e := newEnv(t)
	e.seedProduct(t, product.Product{Name: "a", Price: decimal.New(1, 0)})
	e.seedProduct(t, product.Product{Name: "b", Price: decimal.New(1, 0)})
	e.seedProduct(t, product.Product{Name: "c", Price: decimal.New(1, 0)})

	w := e.do(t, http.MethodGet, "/featured", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON[featuredResponse](t, w)
	assert.Len(t, got.Items, 3)
	assert.Equal(t, 0, got.Position)
	assert.False(t, got.Paused)

	w = e.do(t, http.MethodPost, "/featured/next", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeJSON[map[string]int](t, w)["position"])

	// Prev from position 1 wraps back to 0; prev again wraps to the end.
	w = e.do(t, http.MethodPost, "/featured/prev", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeJSON[map[string]int](t, w)["position"])
	w = e.do(t, http.MethodPost, "/featured/prev", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeJSON[map[string]int](t, w)["position"])

	w = e.do(t, http.MethodPost, "/featured/select", selectRequest{Index: 1}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeJSON[map[string]int](t, w)["position"])

	w = e.do(t, http.MethodPost, "/featured/pause", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, e.rotator.Paused())

	w = e.do(t, http.MethodPost, "/featured/resume", nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, e.rotator.Paused())
}

// --- Auth endpoints ---

func TestAuthEndpoints(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/auth/signup", credentialsRequest{
		Email:    "reader@example.com",
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[sessionResponse](t, w)
	assert.NotEmpty(t, created.Token)
	assert.False(t, created.Admin)

	w = e.do(t, http.MethodPost, "/auth/signup", credentialsRequest{
		Email:    "reader@example.com",
		Password: "different456",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodPost, "/auth/signin", credentialsRequest{
		Email:    "reader@example.com",
		Password: "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/auth/signin", credentialsRequest{
		Email:    "reader@example.com",
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	session := decodeJSON[sessionResponse](t, w)

	w = e.do(t, http.MethodPost, "/auth/signout", nil, session.Token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuth_WeakPassword(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/auth/signup", credentialsRequest{
		Email:    "reader@example.com",
		Password: "123",
	}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// --- Admin users ---

func TestAdmin_Users(t *testing.T) {
	e := newEnv(t)
	token := e.adminToken(t)

	sess, err := e.auth.CreateAccount(context.Background(), "reader@example.com", "password123")
	require.NoError(t, err)

	w := e.do(t, http.MethodGet, "/admin/users", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON[[]userResponse](t, w), 2)

	w = e.do(t, http.MethodPut, "/admin/users/"+sess.AccountID+"/admin", setAdminRequest{Admin: true}, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	fresh, err := e.auth.SignIn(context.Background(), "reader@example.com", "password123")
	require.NoError(t, err)
	assert.True(t, fresh.Admin)
}

func TestBadJSONBody(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	e.routes.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
