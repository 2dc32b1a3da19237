package controllerImp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ego5g/turizm/pkg/ai"
	"github.com/ego5g/turizm/pkg/itinerary/serviceImp"
	"github.com/ego5g/turizm/pkg/logger"
)

type stubClient struct {
	called bool
	text   string
	err    error
}

func (s *stubClient) GenerateText(context.Context, string) (string, error) {
	s.called = true
	return s.text, s.err
}
func (s *stubClient) Provider() string { return "stub" }
func (s *stubClient) Model() string    { return "stub" }

func post(t *testing.T, h *ItineraryCtrl, body string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Generate(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	var out map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestGenerateEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		client     *stubClient
		wantStatus int
		wantKey    string
		wantCalled bool
	}{
		{
			name:       "success",
			body:       `{"destination":"Tbilisi","duration":"3 days","interests":"general sightseeing","language":"en"}`,
			client:     &stubClient{text: "# Tbilisi"},
			wantStatus: http.StatusOK,
			wantKey:    "itinerary",
			wantCalled: true,
		},
		{
			name:       "missing destination",
			body:       `{"duration":"3 days","interests":"food","language":"en"}`,
			client:     &stubClient{text: "x"},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
		},
		{
			name:       "bad language",
			body:       `{"destination":"Batumi","duration":"2 days","interests":"sea","language":"fr"}`,
			client:     &stubClient{text: "x"},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
		},
		{
			name:       "malformed json",
			body:       `{"destination":`,
			client:     &stubClient{text: "x"},
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
		},
		{
			name:       "generator failure",
			body:       `{"destination":"Mestia","duration":"4 days","interests":"hiking","language":"ka"}`,
			client:     &stubClient{err: ai.ErrEmptyResponse},
			wantStatus: http.StatusInternalServerError,
			wantKey:    "error",
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewItineraryCtrl(serviceImp.NewItinerarySvc(tt.client, logger.Nop(), nil, 0))
			rec, out := post(t, h, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if out[tt.wantKey] == "" {
				t.Errorf("response lacks %q: %s", tt.wantKey, rec.Body.String())
			}
			if tt.client.called != tt.wantCalled {
				t.Errorf("generator called = %v, want %v", tt.client.called, tt.wantCalled)
			}
		})
	}
}
