package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ikkim/homecart-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeProvider(t *testing.T, profile map[string]interface{}) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "provider-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestOAuthService(srv *httptest.Server) OAuthService {
	return newOAuthService(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, srv.URL+"/userinfo")
}

func TestGoogleOAuthService_Disabled(t *testing.T) {
	svc := NewGoogleOAuthService(config.GoogleOAuthConfig{})
	assert.False(t, svc.Enabled())
	assert.Empty(t, svc.AuthCodeURL("state"))

	_, err := svc.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrOAuthDisabled)
}

func TestGoogleOAuthService_AuthCodeURL(t *testing.T) {
	svc := NewGoogleOAuthService(config.GoogleOAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
	})
	require.True(t, svc.Enabled())

	url := svc.AuthCodeURL("xyz")
	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "state=xyz")
	assert.Contains(t, url, "client_id=client")
}

func TestGoogleOAuthService_Exchange(t *testing.T) {
	t.Run("Valid code", func(t *testing.T) {
		srv := newFakeProvider(t, map[string]interface{}{
			"sub": "sub-1", "email": "g@example.com", "email_verified": true, "name": "G User",
		})
		profile, err := newTestOAuthService(srv).Exchange(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "sub-1", profile.Subject)
		assert.Equal(t, "g@example.com", profile.Email)
		assert.Equal(t, "G User", profile.Name)
	})

	t.Run("Rejected code", func(t *testing.T) {
		srv := newFakeProvider(t, map[string]interface{}{})
		_, err := newTestOAuthService(srv).Exchange(context.Background(), "bad-code")
		assert.ErrorIs(t, err, ErrOAuthExchange)
	})

	t.Run("Unverified email", func(t *testing.T) {
		srv := newFakeProvider(t, map[string]interface{}{
			"sub": "sub-1", "email": "g@example.com", "email_verified": false,
		})
		_, err := newTestOAuthService(srv).Exchange(context.Background(), "good-code")
		assert.ErrorIs(t, err, ErrOAuthEmailRequired)
	})
}
