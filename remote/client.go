// Package remote talks to the authoritative registration database. The
// engine only sees the RegistrationSource interface; tests substitute fakes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RegistrantRecord is one registrant as returned by the remote source.
type RegistrantRecord struct {
	RegistrationID string `json:"registration_id"`
	OrbitID        string `json:"orbit_id"`
	QRSignature    string `json:"qr_signature"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	CollegeName    string `json:"college_name"`
}

// RegistrationSource is the remote side of the check-in engine.
//
// UpsertAttendance must be idempotent under repeated identical calls: the
// same (eventID, registrationID) pair may be pushed again after a partial
// sync, and may arrive from several devices. The client always transmits the
// intent's original markedAt/markedBy, never the push time, so a remote that
// keeps the earliest markedAt gives first-marker-wins attribution.
type RegistrationSource interface {
	FetchRegistrants(ctx context.Context, eventID string) ([]RegistrantRecord, error)
	UpsertAttendance(ctx context.Context, eventID, registrationID string, markedAt time.Time, markedBy string) error
}

// HTTPSource implements RegistrationSource against the registration API.
type HTTPSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewHTTPSource(baseURL, apiKey string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	return s.Client.Do(req)
}

func (s *HTTPSource) FetchRegistrants(ctx context.Context, eventID string) ([]RegistrantRecord, error) {
	u := fmt.Sprintf("%s/api/events/%s/registrants", s.BaseURL, url.PathEscape(eventID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch registrants for %s: status %d: %s", eventID, resp.StatusCode, bytes.TrimSpace(body))
	}

	var out struct {
		Registrants []RegistrantRecord `json:"registrants"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode registrants: %w", err)
	}
	return out.Registrants, nil
}

func (s *HTTPSource) UpsertAttendance(ctx context.Context, eventID, registrationID string, markedAt time.Time, markedBy string) error {
	payload, err := json.Marshal(map[string]any{
		"marked_at": markedAt.UTC().Format(time.RFC3339Nano),
		"marked_by": markedBy,
	})
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/api/events/%s/attendance/%s",
		s.BaseURL, url.PathEscape(eventID), url.PathEscape(registrationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("upsert attendance %s/%s: status %d: %s", eventID, registrationID, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
