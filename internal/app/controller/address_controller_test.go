package controller

import (
	"net/http"
	"testing"

	"github.com/ikkim/homecart-backend/internal/app/model"
	apperrors "github.com/ikkim/homecart-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressBody(name string, isDefault bool) map[string]interface{} {
	return map[string]interface{}{
		"fullName":    name,
		"phoneNumber": "9123456789",
		"pincode":     "600001",
		"area":        "T Nagar",
		"city":        "Chennai",
		"state":       "TN",
		"isDefault":   isDefault,
	}
}

func (e *testEnv) createAddress(t *testing.T, user *model.User, name string, isDefault bool) model.Address {
	w := e.do(t, http.MethodPost, addressPath(user.ID), user, addressBody(name, isDefault))
	require.Equal(t, http.StatusCreated, w.Code)

	var address model.Address
	decodeJSON(t, w, &address)
	return address
}

func TestAddressController_DefaultScenario(t *testing.T) {
	env := setupTestEnv(t)

	a1 := env.createAddress(t, env.owner, "A1", true)
	assert.NotEmpty(t, a1.ID)
	assert.False(t, a1.CreatedAt.IsZero())
	a2 := env.createAddress(t, env.owner, "A2", true)

	w := env.do(t, http.MethodGet, addressPath(env.owner.ID), env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var addresses []model.Address
	decodeJSON(t, w, &addresses)
	require.Len(t, addresses, 2)
	assert.Equal(t, a2.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
	assert.Equal(t, a1.ID, addresses[1].ID)
	assert.False(t, addresses[1].IsDefault)
}

func TestAddressController_EmptyList(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, addressPath(env.owner.ID), env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAddressController_CreateValidation(t *testing.T) {
	env := setupTestEnv(t)

	for _, field := range []string{"fullName", "phoneNumber", "pincode", "area", "city", "state"} {
		t.Run("Missing "+field, func(t *testing.T) {
			body := addressBody("A1", false)
			delete(body, field)

			w := env.do(t, http.MethodPost, addressPath(env.owner.ID), env.owner, body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp apperrors.ValidationError
			decodeJSON(t, w, &resp)
			assert.Equal(t, "is required", resp.Fields[field])
		})
	}

	assert.Zero(t, env.countRows(t, &model.Address{}))
}

func TestAddressController_Update(t *testing.T) {
	env := setupTestEnv(t)

	a1 := env.createAddress(t, env.owner, "A1", true)
	a2 := env.createAddress(t, env.owner, "A2", false)

	body := addressBody("A2 moved", true)
	body["id"] = a2.ID
	body["city"] = "Madurai"

	w := env.do(t, http.MethodPut, addressPath(env.owner.ID), env.owner, body)
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.Address
	decodeJSON(t, w, &updated)
	assert.Equal(t, "Madurai", updated.City)
	assert.True(t, updated.IsDefault)

	var reloaded model.Address
	require.NoError(t, env.db.First(&reloaded, "id = ?", a1.ID).Error)
	assert.False(t, reloaded.IsDefault)

	t.Run("Missing id", func(t *testing.T) {
		w := env.do(t, http.MethodPut, addressPath(env.owner.ID), env.owner, addressBody("X", false))
		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp apperrors.ValidationError
		decodeJSON(t, w, &resp)
		assert.Contains(t, resp.Fields, "id")
	})

	t.Run("Unknown id", func(t *testing.T) {
		body := addressBody("X", true)
		body["id"] = "missing"
		w := env.do(t, http.MethodPut, addressPath(env.owner.ID), env.owner, body)
		assert.Equal(t, http.StatusNotFound, w.Code)

		// the rolled back transaction must keep A2 as the default
		var a2Now model.Address
		require.NoError(t, env.db.First(&a2Now, "id = ?", a2.ID).Error)
		assert.True(t, a2Now.IsDefault)
	})
}

func TestAddressController_ForeignAddressIsNotFound(t *testing.T) {
	env := setupTestEnv(t)

	theirs := env.createAddress(t, env.other, "Theirs", true)
	env.createAddress(t, env.owner, "Mine", true)

	body := addressBody("Hijack", true)
	body["id"] = theirs.ID
	w := env.do(t, http.MethodPut, addressPath(env.owner.ID), env.owner, body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, addressPath(env.owner.ID), env.owner, map[string]interface{}{"id": theirs.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var reloaded model.Address
	require.NoError(t, env.db.First(&reloaded, "id = ?", theirs.ID).Error)
	assert.Equal(t, "Theirs", reloaded.FullName)
	assert.True(t, reloaded.IsDefault)
}

func TestAddressController_Delete(t *testing.T) {
	env := setupTestEnv(t)

	a1 := env.createAddress(t, env.owner, "A1", false)

	w := env.do(t, http.MethodDelete, addressPath(env.owner.ID), env.owner, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, addressPath(env.owner.ID), env.owner, map[string]interface{}{"id": a1.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, addressPath(env.owner.ID), env.owner, map[string]interface{}{"id": a1.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp apperrors.ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, apperrors.AddressNotFound, resp.Error)
}

func TestAddressController_SetDefault(t *testing.T) {
	env := setupTestEnv(t)

	env.createAddress(t, env.owner, "A1", true)
	a2 := env.createAddress(t, env.owner, "A2", false)

	w := env.do(t, http.MethodPut, addressPath(env.owner.ID)+"/"+a2.ID+"/default", env.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var addresses []model.Address
	decodeJSON(t, env.do(t, http.MethodGet, addressPath(env.owner.ID), env.owner, nil), &addresses)
	assert.Equal(t, a2.ID, addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
	assert.False(t, addresses[1].IsDefault)

	w = env.do(t, http.MethodPut, addressPath(env.owner.ID)+"/missing/default", env.owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddressController_Authorization(t *testing.T) {
	env := setupTestEnv(t)
	mine := env.createAddress(t, env.owner, "Mine", true)
	path := addressPath(env.owner.ID)

	update := addressBody("Changed", false)
	update["id"] = mine.ID

	requests := []struct {
		method string
		body   interface{}
	}{
		{method: http.MethodGet},
		{method: http.MethodPost, body: addressBody("Injected", true)},
		{method: http.MethodPut, body: update},
		{method: http.MethodDelete, body: map[string]interface{}{"id": mine.ID}},
	}

	for _, r := range requests {
		t.Run(r.method+" by other user", func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, env.do(t, r.method, path, env.other, r.body).Code)
		})
		t.Run(r.method+" by admin", func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, env.do(t, r.method, path, env.admin, r.body).Code)
		})
		t.Run(r.method+" anonymous", func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, env.do(t, r.method, path, nil, r.body).Code)
		})
	}

	assert.Equal(t, int64(1), env.countRows(t, &model.Address{}))
	var reloaded model.Address
	require.NoError(t, env.db.First(&reloaded, "id = ?", mine.ID).Error)
	assert.Equal(t, "Mine", reloaded.FullName)
	assert.True(t, reloaded.IsDefault)
}
