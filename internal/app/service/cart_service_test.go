package service

import (
	"context"
	"testing"

	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/repository"
	"github.com/ikkim/homecart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartServiceTest(t *testing.T) (CartService, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	user := &model.User{Email: "test@example.com", Name: "Test User"}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{Name: "Test Product", Price: 499, MainImage: "/p1.jpg", StockQuantity: 10}
	require.NoError(t, testDB.Create(product).Error)

	return NewCartService(repository.NewCartRepository(testDB)), user, product
}

func TestCartService_Scenario(t *testing.T) {
	cartService, user, product := setupCartServiceTest(t)
	ctx := context.Background()

	_, err := cartService.AddToCart(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	lines, err := cartService.GetUserCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, product.ID, lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)

	_, err = cartService.AddToCart(ctx, user.ID, product.ID, 3)
	require.NoError(t, err)

	lines, err = cartService.GetUserCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	require.NoError(t, cartService.UpdateQuantity(ctx, user.ID, product.ID, 0))

	lines, err = cartService.GetUserCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartService_AddToCartValidation(t *testing.T) {
	cartService, user, product := setupCartServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		productID string
		quantity  int
		wantErr   error
	}{
		{name: "Missing product", productID: "", quantity: 1, wantErr: ErrProductRequired},
		{name: "Zero quantity", productID: product.ID, quantity: 0, wantErr: ErrInvalidQuantity},
		{name: "Negative quantity", productID: product.ID, quantity: -2, wantErr: ErrInvalidQuantity},
		{name: "Valid", productID: product.ID, quantity: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := cartService.AddToCart(ctx, user.ID, tt.productID, tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.quantity, item.Quantity)
		})
	}
}

func TestCartService_UpdateQuantity(t *testing.T) {
	cartService, user, product := setupCartServiceTest(t)
	ctx := context.Background()

	t.Run("Zero on absent item succeeds", func(t *testing.T) {
		assert.NoError(t, cartService.UpdateQuantity(ctx, user.ID, product.ID, 0))
	})

	t.Run("Positive on absent item is not found", func(t *testing.T) {
		assert.ErrorIs(t, cartService.UpdateQuantity(ctx, user.ID, product.ID, 3), ErrCartItemNotFound)
	})

	t.Run("Negative is rejected", func(t *testing.T) {
		assert.ErrorIs(t, cartService.UpdateQuantity(ctx, user.ID, product.ID, -1), ErrInvalidQuantity)
	})

	t.Run("Overwrites existing quantity", func(t *testing.T) {
		_, err := cartService.AddToCart(ctx, user.ID, product.ID, 5)
		require.NoError(t, err)

		require.NoError(t, cartService.UpdateQuantity(ctx, user.ID, product.ID, 2))

		lines, err := cartService.GetUserCart(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)
	})
}

func TestCartService_RemoveFromCart(t *testing.T) {
	cartService, user, product := setupCartServiceTest(t)
	ctx := context.Background()

	assert.ErrorIs(t, cartService.RemoveFromCart(ctx, user.ID, product.ID), ErrCartItemNotFound)

	_, err := cartService.AddToCart(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, cartService.RemoveFromCart(ctx, user.ID, product.ID))
	assert.ErrorIs(t, cartService.RemoveFromCart(ctx, user.ID, product.ID), ErrCartItemNotFound)
}
