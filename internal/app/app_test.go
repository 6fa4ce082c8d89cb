package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/littlejunkers/leadchat/internal/config"
	"github.com/littlejunkers/leadchat/internal/extract"
	"github.com/littlejunkers/leadchat/internal/orchestrator"
	"github.com/littlejunkers/leadchat/pkg/provider/llm"
	llmmock "github.com/littlejunkers/leadchat/pkg/provider/llm/mock"
	sinkmock "github.com/littlejunkers/leadchat/pkg/provider/sink/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ListenAddr: ":0",
			LogLevel:   config.LogInfo,
		},
		Providers: config.ProvidersConfig{
			Completion: config.ProviderEntry{Name: "mock", Model: "test"},
		},
		Persona: orchestrator.Persona{Phone: "470-548-4733"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	prov := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Happy to help!"},
	}
	a, err := New(context.Background(), cfg, &Providers{Completion: prov},
		WithSink(&sinkmock.Sink{}),
		WithExtractor(extract.NewRegex(nil)),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func postChat(t *testing.T, h http.Handler, text string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"messages": []map[string]string{{"role": "user", "content": text}},
	})
	r := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return resp.Reply
}

func TestNewRequiresCompletionProvider(t *testing.T) {
	_, err := New(context.Background(), testConfig(), &Providers{})
	if err == nil {
		t.Fatal("New accepted a nil completion provider")
	}
}

func TestAppServesChat(t *testing.T) {
	a := newTestApp(t, testConfig())

	reply := postChat(t, a, "What sizes do you have?")
	if !strings.HasPrefix(reply, "Happy to help!") {
		t.Errorf("reply = %q", reply)
	}
}

func TestExtractionFallsBackToCompletionProvider(t *testing.T) {
	// No injected extractor: New wires the model+regex chain itself, with the
	// completion provider backing up the dedicated extraction provider.
	extraction := &llmmock.Provider{CompleteErr: errors.New("extraction model down")}
	completion := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "not json"},
	}
	snk := &sinkmock.Sink{}
	a, err := New(context.Background(), testConfig(),
		&Providers{Completion: completion, Extraction: extraction},
		WithSink(snk),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": "This is Jane, 404-555-0123."},
			{"role": "assistant", "content": "Thanks Jane! How can I help?"},
			{"role": "user", "content": "This is ridiculous, I want a refund."},
		},
	})
	r := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	w := httptest.NewRecorder()
	a.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if extraction.CallCount() == 0 {
		t.Error("extraction provider never tried")
	}
	if completion.CallCount() == 0 {
		t.Error("completion provider never tried as extraction fallback")
	}
	if snk.CallCount() != 1 {
		t.Errorf("sink called %d times, want 1", snk.CallCount())
	}
	if n := snk.LastCall().Notification; n.Lead.Phone != "404-555-0123" {
		t.Errorf("lead phone = %q, want the regex-extracted number", n.Lead.Phone)
	}
}

func TestReloadSwapsPersona(t *testing.T) {
	old := testConfig()
	a := newTestApp(t, old)

	// The hard-close reply embeds the business phone number, so a persona
	// change is visible through the safety path.
	reply := postChat(t, a, "I will kill you")
	if !strings.Contains(reply, "470-548-4733") {
		t.Fatalf("reply = %q, want the original phone", reply)
	}

	updated := testConfig()
	updated.Persona.Phone = "555-000-1111"
	a.reload(old, updated)

	reply = postChat(t, a, "I will kill you")
	if !strings.Contains(reply, "555-000-1111") {
		t.Errorf("reply = %q, want the updated phone", reply)
	}
}

func TestReloadIgnoresNoChange(t *testing.T) {
	cfg := testConfig()
	a := newTestApp(t, cfg)
	before := a.handler.Load()

	a.reload(cfg, testConfig())

	if a.handler.Load() != before {
		t.Error("handler was rebuilt for an identical config")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	a := newTestApp(t, testConfig())

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}
