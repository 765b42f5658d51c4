package internal

import (
	"bytes"
	"context"
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
	"marketplace-booking-backend/internal/api"
	"marketplace-booking-backend/internal/db"
	"marketplace-booking-backend/internal/i18n"
	"marketplace-booking-backend/internal/model"
	"marketplace-booking-backend/internal/mw"
	"marketplace-booking-backend/internal/notification"
	"marketplace-booking-backend/internal/store"
)

const integrationSecret = "integration-secret"

func signToken(t *testing.T, userID int64, role model.UserRole) string {
	t.Helper()
	claims := mw.Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(integrationSecret))
	require.NoError(t, err)
	return signed
}

func request(t *testing.T, router *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestBookingLifecycle drives a booking through its whole life over the HTTP
// API: the partner publishes availability, the client books a cleaning,
// the booking advances to COMPLETED, the client rates it, and a backward
// transition is rejected.
func TestBookingLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	users := []model.User{
		{ID: 10, Name: "Ana Cliente", Email: "ana@ebglobal.example", Role: model.RoleClient, Language: "pt"},
		{ID: 20, Name: "Bento Parceiro", Email: "bento@ebglobal.example", Role: model.RolePartner, Language: "pt"},
	}
	require.NoError(t, testDB.Create(&users).Error)
	svc := model.Service{
		ID:        5,
		PartnerID: 20,
		Name:      "Limpeza profunda",
		BasePrice: decimal.NewFromInt(50000),
		Currency:  "AOA",
	}
	require.NoError(t, testDB.Create(&svc).Error)

	catalog, err := i18n.Load("", "pt")
	require.NoError(t, err)

	appStore := store.NewGormStore(testDB, store.Options{ReleaseSlotOnCancel: true})
	notifier := notification.NewWorkerPool(1, testDB, catalog, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier.Start(ctx)

	cfg := &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
		JWTSecret:       integrationSecret,
	}
	router := api.NewRouter(cfg, appStore, notifier, nil)

	client := signToken(t, 10, model.RoleClient)
	partner := signToken(t, 20, model.RolePartner)

	// The partner publishes a slot two days out.
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	w := request(t, router, http.MethodPost, "/api/services/5/slots", partner,
		gin.H{"start_times": []string{start.Format(time.RFC3339)}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The client finds it.
	w = request(t, router, http.MethodGet, "/api/services/5/slots", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Slots []api.SlotResponse `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Slots, 1)
	slot := listed.Slots[0]
	assert.True(t, slot.IsAvailable)
	assert.Equal(t, 90*time.Minute, slot.EndTime.Sub(slot.StartTime))

	// The client books it.
	w = request(t, router, http.MethodPost, "/api/bookings", client,
		gin.H{"service_id": 5, "slot_id": slot.ID, "notes": "portão azul"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created api.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Regexp(t, `^EB[0-9A-F]{8}$`, created.BookingNumber)
	assert.Equal(t, "PENDING", created.Status)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "AOA", created.Currency)

	number := created.BookingNumber
	statusPath := "/api/bookings/" + number + "/status"

	// The partner walks the booking to completion.
	for _, step := range []struct {
		next  string
		notes string
	}{
		{"CONFIRMED", "confirmado por telefone"},
		{"IN_PROGRESS", ""},
		{"COMPLETED", ""},
	} {
		w = request(t, router, http.MethodPost, statusPath, partner, gin.H{"status": step.next, "notes": step.notes})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var after api.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
		assert.Equal(t, step.next, after.Status)
	}

	// The client leaves a five-star review.
	w = request(t, router, http.MethodPost, "/api/bookings/"+number+"/rating", client,
		gin.H{"rating": 5, "comment": "excellent"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// COMPLETED is terminal for forward motion; going back is refused.
	w = request(t, router, http.MethodPost, statusPath, partner, gin.H{"status": "CONFIRMED"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot transition from COMPLETED to CONFIRMED")

	// The detail view shows the complete audit trail.
	w = request(t, router, http.MethodGet, "/api/bookings/"+number, client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail api.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "COMPLETED", detail.Status)
	require.NotNil(t, detail.ClientRating)
	assert.Equal(t, 5, *detail.ClientRating)
	assert.Equal(t, "excellent", detail.ClientReview)
	require.Len(t, detail.StatusHistory, 4)
	assert.Equal(t, "PENDING", detail.StatusHistory[0].NewStatus)
	assert.Equal(t, "confirmado por telefone", detail.StatusHistory[1].Notes)
	assert.Equal(t, "COMPLETED", detail.StatusHistory[3].NewStatus)

	// The slot stays consumed.
	var reloaded model.Slot
	require.NoError(t, testDB.First(&reloaded, slot.ID).Error)
	assert.False(t, reloaded.IsAvailable)

	// Partner-side figures reflect the completed job.
	w = request(t, router, http.MethodGet, "/api/bookings/stats", partner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats store.BookingStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.TotalBookings)
	assert.EqualValues(t, 1, stats.CompletedBookings)
	assert.InDelta(t, 5.0, stats.AverageRating, 0.001)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(50000)))
}
