package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace-booking-backend/config"
	"marketplace-booking-backend/internal/db"
	"marketplace-booking-backend/internal/model"
	"marketplace-booking-backend/internal/mw"
	"marketplace-booking-backend/internal/store"
)

const testSecret = "test-secret"

func setupRouter(t *testing.T) (*gin.Engine, store.Store, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	users := []model.User{
		{ID: 1, Name: "Ana Client", Email: "ana@example.com", Role: model.RoleClient, Language: "pt"},
		{ID: 2, Name: "Bento Partner", Email: "bento@example.com", Role: model.RolePartner, Language: "pt"},
		{ID: 3, Name: "Carla Admin", Email: "carla@example.com", Role: model.RoleAdmin, Language: "en"},
	}
	require.NoError(t, gormDB.Create(&users).Error)
	svc := model.Service{
		ID:        1,
		PartnerID: 2,
		Name:      "Deep home cleaning",
		BasePrice: decimal.NewFromInt(50000),
		Currency:  "AOA",
	}
	require.NoError(t, gormDB.Create(&svc).Error)

	appStore := store.NewGormStore(gormDB, store.Options{ReleaseSlotOnCancel: true})
	cfg := &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
		JWTSecret:       testSecret,
	}
	return NewRouter(cfg, appStore, nil, nil), appStore, gormDB
}

func token(t *testing.T, userID int64, role model.UserRole) string {
	t.Helper()
	claims := mw.Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSlotViaAPI(t *testing.T, router *gin.Engine, start time.Time) int64 {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/services/1/slots", token(t, 2, model.RolePartner),
		gin.H{"start_times": []string{start.Format(time.RFC3339)}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Slots []SlotResponse `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Slots, 1)
	return resp.Slots[0].ID
}

func TestAuthRequired(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/bookings", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The health endpoint stays open.
	w = doJSON(t, router, http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateBookingEndpoint(t *testing.T) {
	router, _, _ := setupRouter(t)
	slotID := createSlotViaAPI(t, router, time.Now().UTC().Add(48*time.Hour).Truncate(time.Hour))

	// Malformed payloads are rejected at the boundary.
	w := doJSON(t, router, http.MethodPost, "/api/bookings", token(t, 1, model.RoleClient), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/bookings", token(t, 1, model.RoleClient),
		gin.H{"service_id": 1, "slot_id": slotID, "notes": "ring twice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^EB[0-9A-F]{8}$`, resp["booking_number"])
	assert.Equal(t, "PENDING", resp["status"])
	assert.Equal(t, "50000", resp["total_amount"], "amount must serialize as a decimal string")
	assert.Equal(t, "AOA", resp["currency"])
	assert.NotNil(t, resp["latest_history"], "every mutation returns the latest history entry")

	// The slot is consumed: a second booking conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/bookings", token(t, 1, model.RoleClient),
		gin.H{"service_id": 1, "slot_id": slotID})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown slot.
	w = doJSON(t, router, http.MethodPost, "/api/bookings", token(t, 1, model.RoleClient),
		gin.H{"service_id": 1, "slot_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingLifecycleEndpoints(t *testing.T) {
	router, _, _ := setupRouter(t)
	slotID := createSlotViaAPI(t, router, time.Now().UTC().Add(48*time.Hour).Truncate(time.Hour))

	w := doJSON(t, router, http.MethodPost, "/api/bookings", token(t, 1, model.RoleClient),
		gin.H{"service_id": 1, "slot_id": slotID})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	number := created["booking_number"].(string)

	statusPath := "/api/bookings/" + number + "/status"

	// A stranger cannot transition the booking.
	w = doJSON(t, router, http.MethodPost, statusPath, token(t, 77, model.RoleClient), gin.H{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Off-table transitions conflict and leave the status unchanged.
	w = doJSON(t, router, http.MethodPost, statusPath, token(t, 2, model.RolePartner), gin.H{"status": "COMPLETED"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot transition from PENDING to COMPLETED")

	for _, next := range []string{"CONFIRMED", "IN_PROGRESS", "COMPLETED"} {
		w = doJSON(t, router, http.MethodPost, statusPath, token(t, 2, model.RolePartner), gin.H{"status": next})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// Rating bounds are validated.
	ratingPath := "/api/bookings/" + number + "/rating"
	w = doJSON(t, router, http.MethodPost, ratingPath, token(t, 1, model.RoleClient), gin.H{"rating": 6, "comment": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, ratingPath, token(t, 1, model.RoleClient), gin.H{"rating": 5, "comment": "excellent"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// COMPLETED -> CONFIRMED is rejected.
	w = doJSON(t, router, http.MethodPost, statusPath, token(t, 2, model.RolePartner), gin.H{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The detail view carries the full ordered history.
	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+number, token(t, 1, model.RoleClient), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Status        string                 `json:"status"`
		ClientRating  int                    `json:"client_rating"`
		StatusHistory []HistoryEntryResponse `json:"status_history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "COMPLETED", detail.Status)
	assert.Equal(t, 5, detail.ClientRating)
	require.Len(t, detail.StatusHistory, 4)
	assert.Equal(t, "PENDING", detail.StatusHistory[0].NewStatus)
	assert.Equal(t, "COMPLETED", detail.StatusHistory[3].NewStatus)

	// A stranger cannot read the booking.
	w = doJSON(t, router, http.MethodGet, "/api/bookings/"+number, token(t, 77, model.RoleClient), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unknown booking numbers are 404s.
	w = doJSON(t, router, http.MethodGet, "/api/bookings/EB00000000", token(t, 1, model.RoleClient), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisputeEndpoints(t *testing.T) {
	router, _, _ := setupRouter(t)
	slotID := createSlotViaAPI(t, router, time.Now().UTC().Add(48*time.Hour).Truncate(time.Hour))

	w := doJSON(t, router, http.MethodPost, "/api/bookings", token(t, 1, model.RoleClient),
		gin.H{"service_id": 1, "slot_id": slotID})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	number := created["booking_number"].(string)

	statusPath := "/api/bookings/" + number + "/status"
	for _, next := range []string{"CONFIRMED", "IN_PROGRESS", "COMPLETED"} {
		w = doJSON(t, router, http.MethodPost, statusPath, token(t, 2, model.RolePartner), gin.H{"status": next})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/bookings/"+number+"/dispute", token(t, 1, model.RoleClient),
		gin.H{"dispute_type": "POOR_QUALITY", "description": "floors untouched"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dispute DisputeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dispute))
	assert.Equal(t, "OPEN", dispute.Status)

	// Resolution is a back-office action.
	resolvePath := "/api/disputes/" + dispute.ID.String() + "/resolve"
	w = doJSON(t, router, http.MethodPost, resolvePath, token(t, 1, model.RoleClient),
		gin.H{"resolution": "refund", "amount": "25000"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, resolvePath, token(t, 3, model.RoleAdmin),
		gin.H{"resolution": "partial refund agreed", "amount": "25000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dispute))
	assert.Equal(t, "RESOLVED", dispute.Status)
	require.NotNil(t, dispute.ResolutionAmount)
	assert.True(t, dispute.ResolutionAmount.Equal(decimal.NewFromInt(25000)))
}

func TestStatsEndpoint(t *testing.T) {
	router, _, _ := setupRouter(t)
	slotID := createSlotViaAPI(t, router, time.Now().UTC().Add(48*time.Hour).Truncate(time.Hour))

	w := doJSON(t, router, http.MethodPost, "/api/bookings", token(t, 1, model.RoleClient),
		gin.H{"service_id": 1, "slot_id": slotID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/bookings/stats", token(t, 2, model.RolePartner), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["total_bookings"])
	assert.EqualValues(t, 1, stats["pending_bookings"])
	assert.Equal(t, "0", stats["total_revenue"])
}
