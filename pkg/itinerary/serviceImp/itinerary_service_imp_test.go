package serviceImp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ego5g/turizm/pkg/ai"
	"github.com/ego5g/turizm/pkg/itinerary/service"
	"github.com/ego5g/turizm/pkg/logger"
	"github.com/ego5g/turizm/pkg/metrics"
)

type fakeClient struct {
	calls  int
	prompt string
	text   string
	err    error
}

func (f *fakeClient) GenerateText(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.text, f.err
}
func (f *fakeClient) Provider() string { return "fake" }
func (f *fakeClient) Model() string    { return "fake-1" }

func validRequest() service.Request {
	return service.Request{Destination: "Tbilisi", Duration: "3 days", Interests: "wine", Language: "en"}
}

func TestGenerateMissingFieldsNeverCallsGenerator(t *testing.T) {
	fc := &fakeClient{text: "x"}
	svc := NewItinerarySvc(fc, logger.Nop(), nil, 0)

	req := validRequest()
	req.Destination = ""
	req.Language = "  "
	_, err := svc.Generate(context.Background(), req)

	if !errors.Is(err, service.ErrMissingField) {
		t.Fatalf("want ErrMissingField, got %v", err)
	}
	if err.Error() != "Missing required fields: destination, language" {
		t.Errorf("message = %q", err.Error())
	}
	if fc.calls != 0 {
		t.Errorf("generator called %d times", fc.calls)
	}
}

func TestGenerateUnsupportedLanguage(t *testing.T) {
	fc := &fakeClient{text: "x"}
	req := validRequest()
	req.Language = "de"
	_, err := NewItinerarySvc(fc, logger.Nop(), nil, 0).Generate(context.Background(), req)
	if !errors.Is(err, service.ErrUnsupportedLanguage) {
		t.Fatalf("want ErrUnsupportedLanguage, got %v", err)
	}
	if fc.calls != 0 {
		t.Error("generator should not be called")
	}
}

func TestGenerateReturnsTextAsIs(t *testing.T) {
	fc := &fakeClient{text: "  # Tbilisi in three days\n"}
	m := metrics.New()
	got, err := NewItinerarySvc(fc, logger.Nop(), m, 0).Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != fc.text {
		t.Errorf("got %q, want %q", got, fc.text)
	}
	for _, want := range []string{"Georgia (the country)", "**Destination:** Tbilisi", "**Trip Duration:** 3 days", "**Main Interests:** wine", "in English"} {
		if !strings.Contains(fc.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateFailureIsSimplified(t *testing.T) {
	fc := &fakeClient{err: &ai.APIError{Provider: "fake", StatusCode: 500, Message: "internal stack trace"}}
	_, err := NewItinerarySvc(fc, logger.Nop(), nil, 0).Generate(context.Background(), validRequest())

	var genErr *service.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerationError, got %v", err)
	}
	if strings.Contains(genErr.Message, "stack trace") {
		t.Errorf("public message leaks diagnostic: %q", genErr.Message)
	}
	if !strings.Contains(err.Error(), "stack trace") {
		t.Errorf("full error lost: %v", err)
	}
}

func TestBuildPromptLanguageNames(t *testing.T) {
	for code, name := range map[string]string{"en": "English", "ru": "Russian", "ka": "Georgian"} {
		tag, ok := LookupLanguage(code)
		if !ok {
			t.Fatalf("LookupLanguage(%q) not ok", code)
		}
		if p := BuildPrompt(validRequest(), tag); !strings.Contains(p, "The output must be in "+name+".") {
			t.Errorf("%s: prompt lacks language instruction", code)
		}
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ai.APIError{StatusCode: 429}, "busy"},
		{ai.ErrBlocked, "rephrase"},
		{context.DeadlineExceeded, "too long"},
		{errors.New("boom"), "An error occurred"},
	}
	for _, tt := range tests {
		if got := PublicMessage(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("PublicMessage(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}
