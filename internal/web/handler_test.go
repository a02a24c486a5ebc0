package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/absarsolarch/ab-3/internal/service"
	"github.com/absarsolarch/ab-3/internal/session"
)

// stubDataTier mimics the data tier's read API.
func stubDataTier(t *testing.T, properties string, healthy bool) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("api") {
		case "properties":
			io.WriteString(w, properties)
		case "health":
			if healthy {
				io.WriteString(w, `{"status":"healthy","db_connected":true}`)
			} else {
				io.WriteString(w, `{"status":"unavailable","db_connected":false}`)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupWeb(t *testing.T, endpoint string) (*Handler, *session.Store) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	flash := session.NewStore(session.NewRedisKV(redisClient))
	client := service.NewListingClient(endpoint, zap.NewNop())
	return NewHandler(client, flash, endpoint, zap.NewNop()), flash
}

const listingJSON = `[
	{"id":1,"title":"Hillside Villa","property_type":"Bungalow","price":"1250000","size_sqft":3800,"bedrooms":5,"bathrooms":4,"location":"Penang","status":"Available","description":"Sea view.","created_at":"2026-02-01 10:00:00"}
]`

func TestIndex_RendersListing(t *testing.T) {
	data := stubDataTier(t, listingJSON, true)
	h, _ := setupWeb(t, data.URL)

	w := httptest.NewRecorder()
	h.Index(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Hillside Villa")
	assert.Contains(t, body, "RM 1,250,000.00")
	assert.Contains(t, body, "5 bed")
	assert.NotContains(t, body, "Unable to connect")
}

func TestIndex_DataTierDown(t *testing.T) {
	h, _ := setupWeb(t, "http://127.0.0.1:1")

	w := httptest.NewRecorder()
	h.Index(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Total unavailability renders an explicit notice, never an error page.
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Unable to connect")
	assert.Contains(t, body, "No properties listed yet")
}

func TestIndex_ShowsFlash(t *testing.T) {
	data := stubDataTier(t, `[]`, true)
	h, flash := setupWeb(t, data.URL)

	require.NoError(t, flash.Put(context.Background(), "sid-1",
		session.Flash{Message: "Property listed successfully!"}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-1"})
	w := httptest.NewRecorder()
	h.Index(w, r)

	assert.Contains(t, w.Body.String(), "Property listed successfully!")

	// Second view: flash is gone.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-1"})
	h.Index(w, r)
	assert.NotContains(t, w.Body.String(), "Property listed successfully!")
}

func TestCallback_StoresFlashAndRedirects(t *testing.T) {
	data := stubDataTier(t, `[]`, true)
	h, flash := setupWeb(t, data.URL)

	r := httptest.NewRequest(http.MethodPost, "/callback",
		strings.NewReader(`{"message":"Property status updated successfully!"}`))
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-2"})
	w := httptest.NewRecorder()
	h.Callback(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	f, err := flash.Pop(context.Background(), "sid-2")
	require.NoError(t, err)
	assert.Equal(t, "Property status updated successfully!", f.Message)
}

func TestCallback_ErrorOutcome(t *testing.T) {
	data := stubDataTier(t, `[]`, true)
	h, flash := setupWeb(t, data.URL)

	r := httptest.NewRequest(http.MethodPost, "/callback",
		strings.NewReader(`{"error":"An error occurred while processing your request."}`))
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-3"})
	w := httptest.NewRecorder()
	h.Callback(w, r)

	assert.Equal(t, http.StatusFound, w.Code)
	f, err := flash.Pop(context.Background(), "sid-3")
	require.NoError(t, err)
	assert.Equal(t, "An error occurred while processing your request.", f.Error)
}

func TestCallback_RejectsGet(t *testing.T) {
	data := stubDataTier(t, `[]`, true)
	h, _ := setupWeb(t, data.URL)

	w := httptest.NewRecorder()
	h.Callback(w, httptest.NewRequest(http.MethodGet, "/callback", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "RM 450,000.00", formatPrice("450000"))
	assert.Equal(t, "RM 1,250,000.50", formatPrice("1250000.5"))
	assert.Equal(t, "RM 999.99", formatPrice("999.99"))
	assert.Equal(t, "RM 0.00", formatPrice("0"))
}
