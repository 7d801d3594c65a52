package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Shravan4507/orbitx-checkin-engine/engine"
	"github.com/Shravan4507/orbitx-checkin-engine/models"
)

type RosterHandler struct {
	Engine *engine.Engine
}

func NewRosterHandler(eng *engine.Engine) *RosterHandler { return &RosterHandler{Engine: eng} }

type LoadRosterReq struct {
	EventName string `json:"event_name"`
}

// POST /events/:eventId/roster
// Replaces the event's cached roster from the remote source. Admin only:
// a reload mid-session swaps every registrant row for the event, so it is
// an explicit operator decision, never automatic.
func (h *RosterHandler) Load(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("eventId"))
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MISSING_EVENT_ID"})
	}

	var req LoadRosterReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	count, err := h.Engine.LoadRoster(c.Request().Context(), eventID, strings.TrimSpace(req.EventName))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, map[string]any{"error": "ROSTER_LOAD_FAILED", "detail": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{"event_id": eventID, "count": count})
}

// GET /events/:eventId/cache
func (h *RosterHandler) CacheStatus(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("eventId"))

	meta, err := h.Engine.CacheMetadata(eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "STORE_READ_FAILED"})
	}
	if meta == nil {
		return c.JSON(http.StatusOK, map[string]any{"cached": false, "valid": false})
	}

	valid, err := h.Engine.IsCacheValid(eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "STORE_READ_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{"cached": true, "valid": valid, "metadata": meta})
}

// DELETE /events/:eventId/cache
func (h *RosterHandler) Clear(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("eventId"))
	if err := h.Engine.ClearEventCache(eventID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "CACHE_CLEAR_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{"cleared": true})
}

// GET /events/:eventId/registrations
func (h *RosterHandler) Registrations(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("eventId"))
	rows, err := h.Engine.RegistrationsForEvent(eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "STORE_READ_FAILED"})
	}
	if rows == nil {
		rows = []models.CachedRegistration{}
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /events/:eventId/stats
func (h *RosterHandler) Stats(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("eventId"))
	st, err := h.Engine.Stats(eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "STORE_READ_FAILED"})
	}
	return c.JSON(http.StatusOK, st)
}
