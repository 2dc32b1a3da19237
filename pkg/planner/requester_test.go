package planner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPRequester(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr string
	}{
		{"ok", 200, `{"itinerary":"# Day 1"}`, "# Day 1", ""},
		{"server error message", 500, `{"error":"An error occurred"}`, "", "An error occurred"},
		{"error field on 200", 200, `{"error":"quota"}`, "", "quota"},
		{"non-json failure", 502, `bad gateway`, "", fallbackError},
		{"missing itinerary", 200, `{}`, "", fallbackError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Request
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &got)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			text, err := NewHTTPRequester(srv.URL+"/").Request(context.Background(),
				Request{Destination: "Tbilisi", Duration: "3 days", Interests: DefaultInterests, Language: "en"})
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil || text != tt.want {
				t.Fatalf("Request = %q, %v", text, err)
			}
			if got.Interests != DefaultInterests || got.Language != "en" {
				t.Errorf("sent %+v", got)
			}
		})
	}
}
