package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/internal/app/service"
	"github.com/ikkim/homecart-backend/internal/authz"
	"github.com/ikkim/homecart-backend/internal/db"
	"github.com/ikkim/homecart-backend/internal/middleware"
	"github.com/ikkim/homecart-backend/pkg/redis"
	"github.com/ikkim/homecart-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-controllers"

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	owner   *model.User
	other   *model.User
	admin   *model.User
	product *model.Product
}

func setupTestEnv(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, userRepo, redis.NopSessionStore{})

	cartController := NewCartController(service.NewCartService(repository.NewCartRepository(testDB)))
	addressController := NewAddressController(service.NewAddressService(repository.NewAddressRepository(testDB)))

	gin.SetMode(gin.TestMode)
	router := gin.New()

	users := router.Group("/api/v1/users/:user_id", authMiddleware.ResolveSession())
	cart := users.Group("/cart", middleware.Guard("cart", authz.CartAccess))
	{
		cart.GET("", cartController.GetCart)
		cart.POST("", cartController.AddToCart)
		cart.PUT("", cartController.UpdateCartItem)
		cart.DELETE("", cartController.RemoveFromCart)
	}
	addresses := users.Group("/addresses", middleware.Guard("address", authz.AddressAccess))
	{
		addresses.GET("", addressController.GetAddresses)
		addresses.POST("", addressController.CreateAddress)
		addresses.PUT("", addressController.UpdateAddress)
		addresses.DELETE("", addressController.DeleteAddress)
		addresses.PUT("/:id/default", addressController.SetDefaultAddress)
	}

	env := &testEnv{db: testDB, router: router}
	env.owner = &model.User{Email: "owner@example.com", Name: "Owner", Role: model.RoleUser}
	env.other = &model.User{Email: "other@example.com", Name: "Other", Role: model.RoleUser}
	env.admin = &model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin}
	for _, u := range []*model.User{env.owner, env.other, env.admin} {
		require.NoError(t, testDB.Create(u).Error)
	}

	env.product = &model.Product{Name: "Handloom Saree", Price: 2499, MainImage: "/saree.jpg", StockQuantity: 3}
	require.NoError(t, testDB.Create(env.product).Error)

	return env
}

func tokenFor(t *testing.T, user *model.User) string {
	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), testJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

// do sends a request; a nil user is anonymous. Strings are sent as raw bodies.
func (e *testEnv) do(t *testing.T, method, path string, user *model.User, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func cartPath(userID string) string {
	return "/api/v1/users/" + userID + "/cart"
}

func addressPath(userID string) string {
	return "/api/v1/users/" + userID + "/addresses"
}

func (e *testEnv) countRows(t *testing.T, m interface{}) int64 {
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}
