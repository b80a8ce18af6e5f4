package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ottercare/pebble/analytics"
	"github.com/ottercare/pebble/api/rest"
	"github.com/ottercare/pebble/cache"
	"github.com/ottercare/pebble/pet/actions"
	"github.com/ottercare/pebble/pet/gifts"
	"github.com/ottercare/pebble/pet/stats"
	"github.com/ottercare/pebble/pet/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := cache.NewCache(cache.Config{})
	require.NoError(t, err)
	ps, err := cache.NewPubSub(cache.Config{})
	require.NoError(t, err)

	st := store.New(c, ps, nil, gifts.New(func() float64 { return 0 }), zap.NewNop(), store.Options{
		Rates: stats.Rates{Hunger: 5, Happiness: 4, Energy: 3, Clean: 2.5},
		Now:   func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, st.Boot(context.Background()))
	t.Cleanup(st.Close)

	an := analytics.New(c, false, zap.NewNop())
	svc := actions.New(st, an, zap.NewNop())

	r := gin.New()
	rest.NewPetHandler(st, svc, an).RegisterRoutes(r.Group("/api"))
	return r, st
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetPetState(t *testing.T) {
	r, st := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/pet", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PlayerID       string `json:"playerId"`
		DaysPlayed     int    `json:"daysPlayed"`
		CanClaimBonus  bool   `json:"canClaimBonus"`
		CloudAvailable bool   `json:"cloudAvailable"`
		State          struct {
			PetName string `json:"petName"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, st.PlayerID(), resp.PlayerID)
	assert.Equal(t, store.DefaultPetName, resp.State.PetName)
	assert.Equal(t, 1, resp.DaysPlayed)
	assert.True(t, resp.CanClaimBonus)
	assert.False(t, resp.CloudAvailable)
}

func TestFeedEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/pet/feed", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Fed   bool           `json:"fed"`
		Stats stats.CoreStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Fed)
	assert.Equal(t, 100.0, resp.Stats.Hunger)
	assert.Equal(t, 0.0, resp.Stats.SeaGlass)
}

func TestPlayEndpointValidation(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/pet/play", `{"score": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "game name is required")

	w = doJSON(r, http.MethodPost, "/api/pet/play", `{"game":"fishing","score":5}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRenameEndpointSanitizes(t *testing.T) {
	r, st := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/pet/name", `{"name":"  Bubbles  "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bubbles", st.Snapshot().PetName)

	// Blank names fall back to the default.
	w = doJSON(r, http.MethodPost, "/api/pet/name", `{"name":"   "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.DefaultPetName, st.Snapshot().PetName)
}

func TestBuyEndpointRejectsUnaffordable(t *testing.T) {
	r, st := setupRouter(t)

	// Fresh pet has zero sea glass.
	w := doJSON(r, http.MethodPost, "/api/shop/buy", `{"item":"hat"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, st.Snapshot().Equipped.Hat)

	w = doJSON(r, http.MethodPost, "/api/shop/buy", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShopEndpointListsCatalog(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/shop", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Catalog map[string]float64 `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 50.0, resp.Catalog["hat"])
	assert.Equal(t, 75.0, resp.Catalog["scarf"])
	assert.Equal(t, 100.0, resp.Catalog["sunglasses"])
}

func TestBonusClaimEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/bonus/claim", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/bonus/claim", "")
	assert.Equal(t, http.StatusConflict, w.Code, "second claim on the same day")
}

func TestRecoverEndpointStatusMapping(t *testing.T) {
	r, st := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/recover", `{"code":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No gateway configured.
	w = doJSON(r, http.MethodPost, "/api/recover", `{"code":"`+"11111111-1111-4111-8111-111111111111"+`"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(r, http.MethodPost, "/api/recover", `{"code":"`+st.PlayerID()+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp store.RecoveryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, store.RecoveryAlreadyLinked, resp.Status)
}

func TestSyncEndpointUnavailableWithoutGateway(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/sync", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResetEndpoint(t *testing.T) {
	r, st := setupRouter(t)

	doJSON(r, http.MethodPost, "/api/pet/feed", "")
	require.Equal(t, 100.0, st.Stats().Hunger)

	w := doJSON(r, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, stats.Defaults(), st.Stats())
}

func TestAnalyticsEndpointDisabled(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Enabled bool `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Enabled)
}
