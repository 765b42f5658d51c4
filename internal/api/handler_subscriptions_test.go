package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-booking-backend/internal/model"
)

func TestSubscriptionLifecycle(t *testing.T) {
	router, _, _ := setupRouter(t)
	bearer := token(t, 1, model.RoleClient)

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", "", gin.H{
		"endpoint": "https://push.example.com/sub/1",
		"p256dh":   "key",
		"auth":     "secret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", bearer, gin.H{"endpoint": "https://push.example.com/sub/1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", bearer, gin.H{
		"endpoint": "https://push.example.com/sub/1",
		"p256dh":   "key",
		"auth":     "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Re-registering the same endpoint is an upsert, not a duplicate.
	w = doJSON(t, router, http.MethodPut, "/api/subscriptions", bearer, gin.H{
		"endpoint": "https://push.example.com/sub/1",
		"p256dh":   "rotated-key",
		"auth":     "secret",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions", bearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Endpoints []string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"https://push.example.com/sub/1"}, list.Endpoints)

	// Another user sees nothing and cannot delete someone else's endpoint.
	other := token(t, 2, model.RolePartner)
	w = doJSON(t, router, http.MethodGet, "/api/subscriptions", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Endpoints)

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", other, gin.H{"endpoint": "https://push.example.com/sub/1"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/subscriptions", bearer, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Endpoints, 1, "deletes are scoped to the caller's own subscriptions")

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", bearer, gin.H{"endpoint": "https://push.example.com/sub/1"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/subscriptions", bearer, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Endpoints)
}

func TestGetPushPublicKeyUnconfigured(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/push/public_key", token(t, 1, model.RoleClient), nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
