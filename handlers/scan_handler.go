package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Shravan4507/orbitx-checkin-engine/engine"
)

type ScanHandler struct {
	Engine *engine.Engine
}

func NewScanHandler(eng *engine.Engine) *ScanHandler { return &ScanHandler{Engine: eng} }

type VerifyReq struct {
	Payload string `json:"payload"` // decoded QR text from the camera layer
}

// POST /events/:eventId/scan
// Pure verification: classifies the payload without touching attendance
// state, so the UI can confirm (or auto-confirm) before calling mark.
func (h *ScanHandler) Verify(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("eventId"))
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MISSING_EVENT_ID"})
	}

	var req VerifyReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	res := h.Engine.Verify(req.Payload, eventID)
	if res.Status == engine.ScanError {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusOK, res)
}

type MarkReq struct {
	QRSignature string `json:"qr_signature"`
}

// POST /attendance/mark
// The single attendance mutation path. Re-marking an attended registrant is
// a success no-op; the response says which it was.
func (h *ScanHandler) Mark(c echo.Context) error {
	var req MarkReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}

	sig, ok := engine.ParseQRPayload(req.QRSignature)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "MALFORMED_SIGNATURE"})
	}

	actor, _ := c.Get("actor").(string)
	deviceID, _ := c.Get("device_id").(string)

	rec, updated, err := h.Engine.MarkAttended(sig, actor, deviceID)
	if err != nil {
		if errors.Is(err, engine.ErrRegistrationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "REGISTRATION_NOT_FOUND"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "MARK_FAILED"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"registration": rec,
		// false when a prior mark already won; the stamp shown is theirs
		"updated": updated,
	})
}
