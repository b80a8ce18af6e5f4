package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ottercare/pebble/analytics"
	"github.com/ottercare/pebble/pet/actions"
	"github.com/ottercare/pebble/pet/store"
)

// PetHandler exposes the pet state and care actions over HTTP.
type PetHandler struct {
	store     *store.Store
	actions   *actions.Service
	analytics *analytics.Service
}

// NewPetHandler creates a PetHandler.
func NewPetHandler(st *store.Store, svc *actions.Service, an *analytics.Service) *PetHandler {
	return &PetHandler{store: st, actions: svc, analytics: an}
}

// RegisterRoutes wires all pet endpoints onto the router group.
func (h *PetHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/pet", h.State)
	g.POST("/pet/feed", h.Feed)
	g.POST("/pet/bathe", h.Bathe)
	g.POST("/pet/sleep", h.Sleep)
	g.POST("/pet/play", h.Play)
	g.POST("/pet/name", h.Rename)
	g.GET("/shop", h.Shop)
	g.POST("/shop/buy", h.Buy)
	g.POST("/bonus/claim", h.ClaimBonus)
	g.POST("/recover", h.Recover)
	g.POST("/sync", h.Sync)
	g.POST("/reset", h.Reset)
	g.GET("/analytics", h.Analytics)
}

// State handles GET /api/pet.
func (h *PetHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"playerId":       h.store.PlayerID(),
		"state":          h.store.Snapshot(),
		"daysPlayed":     h.store.DaysPlayed(),
		"canClaimBonus":  h.store.CanClaimDailyBonus(),
		"cloudAvailable": h.store.CloudAvailable(),
	})
}

// Feed handles POST /api/pet/feed.
func (h *PetHandler) Feed(c *gin.Context) {
	out, fed := h.actions.Feed(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"stats": out, "fed": fed})
}

// Bathe handles POST /api/pet/bathe.
func (h *PetHandler) Bathe(c *gin.Context) {
	out, bathed := h.actions.Bathe(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"stats": out, "bathed": bathed})
}

// Sleep handles POST /api/pet/sleep (toggle).
func (h *PetHandler) Sleep(c *gin.Context) {
	sleeping := h.actions.ToggleSleep(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"sleeping": sleeping, "stats": h.store.Stats()})
}

// Play handles POST /api/pet/play.
func (h *PetHandler) Play(c *gin.Context) {
	var req struct {
		Game  string `json:"game" binding:"required"`
		Score int    `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	out := h.actions.Play(c.Request.Context(), req.Game, req.Score)
	c.JSON(http.StatusOK, gin.H{"stats": out})
}

// Rename handles POST /api/pet/name.
func (h *PetHandler) Rename(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	name := h.store.SetPetName(c.Request.Context(), req.Name)
	c.JSON(http.StatusOK, gin.H{"petName": name})
}

// Shop handles GET /api/shop.
func (h *PetHandler) Shop(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"catalog": actions.Catalog()})
}

// Buy handles POST /api/shop/buy.
func (h *PetHandler) Buy(c *gin.Context) {
	var req struct {
		Item string `json:"item" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !h.actions.BuyItem(c.Request.Context(), req.Item) {
		c.JSON(http.StatusConflict, gin.H{"error": "purchase failed", "stats": h.store.Stats()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": h.store.Stats(), "equipped": h.store.Snapshot().Equipped})
}

// ClaimBonus handles POST /api/bonus/claim.
func (h *PetHandler) ClaimBonus(c *gin.Context) {
	claim := h.actions.ClaimDailyBonus(c.Request.Context())
	status := http.StatusOK
	if !claim.CanClaim {
		status = http.StatusConflict
	}
	c.JSON(status, claim)
}

// Recover handles POST /api/recover.
func (h *PetHandler) Recover(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result := h.store.RecoverFromCode(c.Request.Context(), req.Code)
	status := http.StatusOK
	switch result.Status {
	case store.RecoveryInvalid:
		status = http.StatusBadRequest
	case store.RecoveryNotFound:
		status = http.StatusNotFound
	case store.RecoveryDisabled:
		status = http.StatusServiceUnavailable
	case store.RecoveryError:
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

// Sync handles POST /api/sync: an immediate reconciliation, bypassing
// the debounce.
func (h *PetHandler) Sync(c *gin.Context) {
	if !h.store.CloudAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cloud sync unavailable"})
		return
	}
	h.store.SyncCloud(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": h.store.Snapshot()})
}

// Reset handles POST /api/reset.
func (h *PetHandler) Reset(c *gin.Context) {
	h.store.ResetToDefaults(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": h.store.Snapshot()})
}

// Analytics handles GET /api/analytics.
func (h *PetHandler) Analytics(c *gin.Context) {
	if !h.analytics.Enabled() {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "counts": h.analytics.Counts(c.Request.Context())})
}
