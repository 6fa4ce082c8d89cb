package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/littlejunkers/leadchat/internal/leadflow"
	"github.com/littlejunkers/leadchat/pkg/provider/llm"
	"github.com/littlejunkers/leadchat/pkg/provider/llm/mock"
	"github.com/littlejunkers/leadchat/pkg/types"
)

func newTestOrchestrator(p llm.Provider) *Orchestrator {
	return New(p, DefaultPersona(), DefaultCatalog(), nil)
}

func TestGenerateBuildsRequest(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Happy to help!"},
	}
	o := newTestOrchestrator(prov)

	msgs := []types.Message{
		types.User("hi there"),
		types.Assistant("Hello! What project are you working on?"),
		types.User("cleaning out a garage"),
	}
	reply, err := o.Generate(context.Background(), msgs, leadflow.Decision{Kind: leadflow.KindContinue})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(reply, "Happy to help!") {
		t.Errorf("reply = %q", reply)
	}
	if prov.CallCount() != 1 {
		t.Fatalf("provider called %d times", prov.CallCount())
	}

	req := prov.CompleteCalls[0].Req
	if req.SystemPrompt == "" {
		t.Error("system prompt not set")
	}
	if !strings.Contains(req.SystemPrompt, "Randy Miller") {
		t.Error("system prompt missing agent name")
	}
	if len(req.Messages) != len(msgs) {
		t.Errorf("got %d messages, want %d", len(req.Messages), len(msgs))
	}
}

func TestGenerateInjectsHintsBeforeTranscript(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "ok"},
	}
	o := newTestOrchestrator(prov)

	msgs := []types.Message{types.User("thanks, that's all")}
	d := leadflow.Decision{
		Kind: leadflow.KindContinue,
		Hints: leadflow.Hints{
			Condolence: true,
			EndOfChat:  true,
		},
	}
	if _, err := o.Generate(context.Background(), msgs, d); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	req := prov.CompleteCalls[0].Req
	if len(req.Messages) != 3 {
		t.Fatalf("got %d messages, want 2 hints + 1 transcript", len(req.Messages))
	}
	for i := 0; i < 2; i++ {
		if req.Messages[i].Role != types.RoleSystem {
			t.Errorf("message %d role = %q, want system", i, req.Messages[i].Role)
		}
	}
	if req.Messages[2].Role != types.RoleUser {
		t.Errorf("transcript not last: role = %q", req.Messages[2].Role)
	}
}

func TestGenerateProviderError(t *testing.T) {
	wantErr := errors.New("upstream down")
	prov := &mock.Provider{CompleteErr: wantErr}
	o := newTestOrchestrator(prov)

	_, err := o.Generate(context.Background(), []types.Message{types.User("hi")}, leadflow.Decision{})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestGenerateEmptyCompletion(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "   \n"},
	}
	o := newTestOrchestrator(prov)

	reply, err := o.Generate(context.Background(), []types.Message{types.User("hi")}, leadflow.Decision{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply != o.Replies().DidNotCatch {
		t.Errorf("reply = %q, want clarification fallback", reply)
	}
}

func TestGenerateSuppressedContactAskOverride(t *testing.T) {
	// The override is unconditional: once the customer has declined twice,
	// the completion text is replaced no matter how the model phrased it.
	tests := []struct {
		name       string
		completion string
	}{
		{"literal contact ask", "No worries! But what's your phone number so we can follow up?"},
		{"rephrased contact ask", "Could you give me a way to reach you, like a number?"},
		{"unrelated reply", "The Mighty Middler holds 16 cubic yards."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov := &mock.Provider{
				CompleteResponse: &llm.CompletionResponse{Content: tt.completion},
			}
			o := newTestOrchestrator(prov)

			d := leadflow.Decision{
				Kind:  leadflow.KindContinue,
				Hints: leadflow.Hints{SuppressContactAsks: true},
			}
			reply, err := o.Generate(context.Background(), []types.Message{types.User("no thanks")}, d)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if reply != o.Replies().SelfServe {
				t.Errorf("reply = %q, want self-serve override", reply)
			}
			if !strings.Contains(reply, "470-548-4733") {
				t.Errorf("self-serve reply missing phone: %q", reply)
			}
		})
	}
}

func TestGenerateRunsPipeline(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Book here: https://www.littlejunkersllc.com/shop"},
	}
	o := newTestOrchestrator(prov)

	reply, err := o.Generate(context.Background(), []types.Message{types.User("hi")}, leadflow.Decision{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(reply, "<https://www.littlejunkersllc.com/shop>") {
		t.Errorf("url not wrapped: %q", reply)
	}
}

func TestRepliesWording(t *testing.T) {
	r := NewReplies(DefaultPersona(), DefaultCatalog())

	if !strings.Contains(r.SevereBlock, "470-548-4733") {
		t.Errorf("severe block missing phone: %q", r.SevereBlock)
	}
	if got := r.EscalationConfirm("404-555-1212"); !strings.Contains(got, "404-555-1212") {
		t.Errorf("escalation confirm missing phone: %q", got)
	}
	if r.CloseCaptured != "Chat closed, lead captured." {
		t.Errorf("close reply = %q", r.CloseCaptured)
	}
	if !strings.Contains(r.SelfServe, "<https://www.littlejunkersllc.com/shop>") {
		t.Errorf("self-serve missing shop link: %q", r.SelfServe)
	}
	// A delivery failure is never surfaced as lost information.
	if !strings.Contains(r.SoftFailure, "saved your info") || !strings.Contains(r.SoftFailure, "reach out") {
		t.Errorf("soft failure must claim the info was saved: %q", r.SoftFailure)
	}
	if !strings.Contains(r.MildOnce, "stay on topic") {
		t.Errorf("mild-once reply should redirect on-topic: %q", r.MildOnce)
	}
}
