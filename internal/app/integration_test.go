package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/config"
	"github.com/ikkim/homecart-backend/internal/app/controller"
	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/internal/app/service"
	"github.com/ikkim/homecart-backend/internal/db"
	"github.com/ikkim/homecart-backend/internal/middleware"
	"github.com/ikkim/homecart-backend/internal/router"
	"github.com/ikkim/homecart-backend/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@homecart.test"
	adminPassword = "admin-password"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

func setupIntegrationTest(t *testing.T) *TestServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode, Environment: "test"},
		JWT: config.JWTConfig{
			Secret:             "integration-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Admin: config.AdminConfig{Email: adminEmail, Password: adminPassword},
	}
	require.NoError(t, db.Seed(testDB, cfg))

	sessions := redis.NopSessionStore{}

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, sessions, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	r := router.NewRouter(
		controller.NewAuthController(authService, service.NewGoogleOAuthService(cfg.OAuth.Google), controller.CookieSettings{AccessTTL: cfg.JWT.AccessTokenExpiry}),
		controller.NewProductController(service.NewProductService(repository.NewProductRepository(testDB))),
		controller.NewCartController(service.NewCartService(repository.NewCartRepository(testDB))),
		controller.NewAddressController(service.NewAddressService(repository.NewAddressRepository(testDB))),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo, sessions),
		testDB,
		cfg,
	)

	return &TestServer{Router: r.Setup(), DB: testDB}
}

func (ts *TestServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

type authResponse struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"tokens"`
}

func (ts *TestServer) register(t *testing.T, email string) authResponse {
	w := ts.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Shopper",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (ts *TestServer) login(t *testing.T, email, password string) authResponse {
	w := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCompleteShopperJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	t.Log("Step 1: Register shopper")
	shopper := ts.register(t, "buyer@example.com")
	token := shopper.Tokens.AccessToken
	cartURL := "/api/v1/users/" + shopper.User.ID + "/cart"

	t.Log("Step 2: Admin creates a product")
	admin := ts.login(t, adminEmail, adminPassword)
	assert.Equal(t, string(model.RoleAdmin), admin.User.Role)

	w := ts.request(t, http.MethodPost, "/api/v1/products", admin.Tokens.AccessToken, map[string]interface{}{
		"name":      "Copper Lota",
		"price":     349.0,
		"mainImage": "/img/lota.jpg",
		"stock":     20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Product model.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	productID := created.Product.ID

	t.Log("Step 3: Browse products")
	w = ts.request(t, http.MethodGet, "/api/v1/products?search=lota", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Products []model.Product `json:"products"`
		Total    int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	t.Log("Step 4: Add to cart twice")
	w = ts.request(t, http.MethodPost, cartURL, token, map[string]interface{}{"productId": productID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.request(t, http.MethodPost, cartURL, token, map[string]interface{}{"productId": productID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)

	t.Log("Step 5: View cart")
	w = ts.request(t, http.MethodGet, cartURL, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []model.CartLine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Copper Lota", lines[0].Name)
	assert.Equal(t, 349.0, lines[0].Price)

	t.Log("Step 6: Set quantity then zero it out")
	w = ts.request(t, http.MethodPut, cartURL, token, map[string]interface{}{"productId": productID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.request(t, http.MethodPut, cartURL, token, map[string]interface{}{"productId": productID, "quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, cartURL, token, nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	t.Log("Step 7: Removing an absent line is a 404")
	w = ts.request(t, http.MethodDelete, cartURL, token, map[string]interface{}{"productId": productID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddressBookJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	shopper := ts.register(t, "home@example.com")
	token := shopper.Tokens.AccessToken
	addressURL := "/api/v1/users/" + shopper.User.ID + "/addresses"

	fields := func(name string, isDefault bool) map[string]interface{} {
		return map[string]interface{}{
			"fullName":    name,
			"phoneNumber": "9876543210",
			"pincode":     "560001",
			"area":        "MG Road",
			"city":        "Bengaluru",
			"state":       "Karnataka",
			"isDefault":   isDefault,
		}
	}

	var first, second model.Address
	w := ts.request(t, http.MethodPost, addressURL, token, fields("Home", true))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = ts.request(t, http.MethodPost, addressURL, token, fields("Office", true))
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	var list []model.Address
	w = ts.request(t, http.MethodGet, addressURL, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	// Promote the first address back.
	w = ts.request(t, http.MethodPut, addressURL+"/"+first.ID+"/default", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, addressURL, token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, first.ID, list[0].ID)

	update := fields("Office (new)", false)
	update["id"] = second.ID
	w = ts.request(t, http.MethodPut, addressURL, token, update)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodDelete, addressURL, token, map[string]interface{}{"id": second.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, addressURL, token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestAccessControl(t *testing.T) {
	ts := setupIntegrationTest(t)

	owner := ts.register(t, "owner@example.com")
	intruder := ts.register(t, "intruder@example.com")
	admin := ts.login(t, adminEmail, adminPassword)

	cartURL := "/api/v1/users/" + owner.User.ID + "/cart"
	addressURL := "/api/v1/users/" + owner.User.ID + "/addresses"

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"Anonymous cart read", http.MethodGet, cartURL, "", http.StatusUnauthorized},
		{"Foreign cart read", http.MethodGet, cartURL, intruder.Tokens.AccessToken, http.StatusForbidden},
		{"Admin cart read", http.MethodGet, cartURL, admin.Tokens.AccessToken, http.StatusOK},
		{"Owner cart read", http.MethodGet, cartURL, owner.Tokens.AccessToken, http.StatusOK},
		{"Anonymous address read", http.MethodGet, addressURL, "", http.StatusUnauthorized},
		{"Foreign address read", http.MethodGet, addressURL, intruder.Tokens.AccessToken, http.StatusForbidden},
		{"Admin address read", http.MethodGet, addressURL, admin.Tokens.AccessToken, http.StatusForbidden},
		{"Garbage token", http.MethodGet, cartURL, "not-a-jwt", http.StatusUnauthorized},
		{"Refresh token as access", http.MethodGet, cartURL, owner.Tokens.RefreshToken, http.StatusUnauthorized},
		{"Shopper creating product", http.MethodPost, "/api/v1/products", owner.Tokens.AccessToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.request(t, tt.method, tt.path, tt.token, map[string]interface{}{})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	ts := setupIntegrationTest(t)

	shopper := ts.register(t, "session@example.com")

	w := ts.request(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": shopper.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)

	w = ts.request(t, http.MethodGet, "/api/v1/auth/me", refreshed.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/auth/logout", refreshed.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())

	w = ts.request(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "homecart_http_requests_total")
}

func TestGoogleLoginDisabled(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.request(t, http.MethodGet, "/api/v1/auth/google/login", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
