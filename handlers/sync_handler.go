package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Shravan4507/orbitx-checkin-engine/engine"
)

type SyncHandler struct {
	Engine *engine.Engine
}

func NewSyncHandler(eng *engine.Engine) *SyncHandler { return &SyncHandler{Engine: eng} }

// POST /sync
// Connectivity-restored trigger: drains the intent queue once. Per-intent
// failures are reported in the counts, not as a request failure.
func (h *SyncHandler) SyncNow(c echo.Context) error {
	rep, err := h.Engine.SyncPending(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "SYNC_FAILED", "detail": err.Error()})
	}
	return c.JSON(http.StatusOK, rep)
}

// GET /sync/pending
func (h *SyncHandler) Pending(c echo.Context) error {
	n, err := h.Engine.PendingSyncCount()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "STORE_READ_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{"pending": n})
}

// POST /sync/sweep
// Admin-triggered retention sweep of already-synced intents.
func (h *SyncHandler) Sweep(c echo.Context) error {
	n, err := h.Engine.SweepSyncedIntents()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "SWEEP_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": n})
}
