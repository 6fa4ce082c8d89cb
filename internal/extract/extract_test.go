package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/littlejunkers/leadchat/pkg/provider/llm"
	"github.com/littlejunkers/leadchat/pkg/provider/llm/mock"
	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/types"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"404-555-1212", "404-555-1212"},
		{"404.555.1212", "404-555-1212"},
		{"(404) 555-1212", "404-555-1212"},
		{"4045551212", "404-555-1212"},
		{"1-404-555-1212", "404-555-1212"},
		{"+1 404 555 1212", "404-555-1212"},
		{"555-1212", ""},
		{"not a phone", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John@Example.com", "john@example.com"},
		{" jane.doe@mail.co ", "jane.doe@mail.co"},
		{"not-an-email", ""},
		{"missing@tld", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModelExtract(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"name": "Sarah", "phone": "(404) 555-1212", "email": "SARAH@example.com", "address": "42 Peachtree Street"}`,
		},
	}
	m := NewModel(prov)

	got, err := m.Extract(context.Background(), []types.Message{types.User("hi, Sarah here")})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := Fields{
		Name:       "Sarah",
		Phone:      "404-555-1212",
		Email:      "sarah@example.com",
		Address:    "42 Peachtree Street",
		Confidence: sink.ConfidenceHigh,
	}
	if got != want {
		t.Errorf("Extract = %+v, want %+v", got, want)
	}

	req := prov.CompleteCalls[0].Req
	if req.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", req.Temperature)
	}
}

func TestModelExtractCodeFence(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: "```json\n{\"name\": \"Tom\", \"phone\": \"\", \"email\": \"\", \"address\": \"\"}\n```",
		},
	}
	got, err := NewModel(prov).Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Name != "Tom" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestModelExtractBadJSON(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Sure! The name is Tom."},
	}
	if _, err := NewModel(prov).Extract(context.Background(), nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRegexExtract(t *testing.T) {
	r := NewRegex(nil)
	msgs := []types.Message{
		types.User("Hi, this is Marcus. You can reach me at 404.555.1212 or marcus@mail.com"),
	}
	got, err := r.Extract(context.Background(), msgs)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Name != "Marcus" || got.Phone != "404-555-1212" || got.Email != "marcus@mail.com" {
		t.Errorf("Extract = %+v", got)
	}
	if got.Confidence != sink.ConfidenceLow {
		t.Errorf("Confidence = %q, want low", got.Confidence)
	}
}

func TestChainModelWins(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"name": "Sarah", "phone": "404-555-1212", "email": "", "address": ""}`,
		},
	}
	c := NewChain(NewModel(prov), NewRegex(nil), nil)

	got, err := c.Extract(context.Background(), []types.Message{types.User("hey")})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Confidence != sink.ConfidenceHigh {
		t.Errorf("Confidence = %q, want high", got.Confidence)
	}
}

func TestChainRegexRepair(t *testing.T) {
	prov := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"name": "Marcus", "phone": "", "email": "", "address": ""}`,
		},
	}
	c := NewChain(NewModel(prov), NewRegex(nil), nil)

	msgs := []types.Message{types.User("It's Marcus, call me at 404-555-1212")}
	got, err := c.Extract(context.Background(), msgs)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Phone != "404-555-1212" {
		t.Errorf("Phone = %q, want regex-repaired number", got.Phone)
	}
	if got.Confidence != sink.ConfidenceMedium {
		t.Errorf("Confidence = %q, want medium", got.Confidence)
	}
}

func TestChainFallsBackToRegex(t *testing.T) {
	prov := &mock.Provider{CompleteErr: errors.New("upstream down")}
	c := NewChain(NewModel(prov), NewRegex(nil), nil)

	msgs := []types.Message{types.User("This is Jane, 404-555-0000")}
	got, err := c.Extract(context.Background(), msgs)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Name != "Jane" || got.Phone != "404-555-0000" {
		t.Errorf("Extract = %+v", got)
	}
	if got.Confidence != sink.ConfidenceLow {
		t.Errorf("Confidence = %q, want low", got.Confidence)
	}
}

func TestFieldsHasMinimumContact(t *testing.T) {
	tests := []struct {
		name string
		f    Fields
		want bool
	}{
		{"name and phone", Fields{Name: "A", Phone: "404-555-1212"}, true},
		{"name and email", Fields{Name: "A", Email: "a@b.co"}, true},
		{"name only", Fields{Name: "A"}, false},
		{"phone only", Fields{Phone: "404-555-1212"}, false},
		{"empty", Fields{}, false},
	}
	for _, tt := range tests {
		if got := tt.f.HasMinimumContact(); got != tt.want {
			t.Errorf("%s: HasMinimumContact() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
