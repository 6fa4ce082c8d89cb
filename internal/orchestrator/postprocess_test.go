package orchestrator

import (
	"strings"
	"testing"
)

func TestWrapBareURLs(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"bare url",
			"Book here: https://www.littlejunkersllc.com/shop",
			"Book here: <https://www.littlejunkersllc.com/shop>",
		},
		{
			"already wrapped",
			"Book here: <https://www.littlejunkersllc.com/shop>",
			"Book here: <https://www.littlejunkersllc.com/shop>",
		},
		{
			"trailing period stays outside",
			"Visit https://www.littlejunkersllc.com/faq.",
			"Visit <https://www.littlejunkersllc.com/faq>.",
		},
		{
			"mixed wrapped and bare",
			"See <https://a.example/x> and https://b.example/y",
			"See <https://a.example/x> and <https://b.example/y>",
		},
		{
			"no urls",
			"Happy to help!",
			"Happy to help!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WrapBareURLs(tt.in, "", c); got != tt.want {
				t.Errorf("WrapBareURLs(%q)\n got %q\nwant %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairEmptyLinks(t *testing.T) {
	c := DefaultCatalog()
	in := "You can book here: <>"
	want := "You can book here: <" + c.OverviewURL + ">"
	if got := RepairEmptyLinks(in, "", c); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := RepairEmptyLinks("no placeholder", "", c); got != "no placeholder" {
		t.Errorf("unexpected rewrite: %q", got)
	}
}

func TestEnsureLink(t *testing.T) {
	c := DefaultCatalog()

	t.Run("appends tier link on booking talk", func(t *testing.T) {
		got := EnsureLink("The Big Junker is perfect for that, want to book it?", "I need a 21 yard dumpster", c)
		if !strings.Contains(got, "<"+c.Tiers[1].URL+">") {
			t.Errorf("expected Big Junker link, got %q", got)
		}
	})

	t.Run("falls back to overview", func(t *testing.T) {
		got := EnsureLink("You can book online anytime.", "hi", c)
		if !strings.Contains(got, "<"+c.OverviewURL+">") {
			t.Errorf("expected overview link, got %q", got)
		}
	})

	t.Run("leaves replies with links alone", func(t *testing.T) {
		in := "Book here: <https://www.littlejunkersllc.com/shop>"
		if got := EnsureLink(in, "", c); got != in {
			t.Errorf("unexpected rewrite: %q", got)
		}
	})

	t.Run("appends even without booking talk", func(t *testing.T) {
		got := EnsureLink("We're open 8 to 5 on weekdays.", "", c)
		if !strings.Contains(got, "<"+c.OverviewURL+">") {
			t.Errorf("expected overview link appended, got %q", got)
		}
	})

	t.Run("tier named in reply picks tier link", func(t *testing.T) {
		got := EnsureLink("The Mighty Middler is a great fit for a kitchen remodel.", "", c)
		if !strings.Contains(got, "<"+c.Tiers[0].URL+">") {
			t.Errorf("expected Mighty Middler link, got %q", got)
		}
	})
}

func TestPipelineRun(t *testing.T) {
	p := NewPipeline(DefaultCatalog())
	in := "Great choice! Book the Mighty Middler here: <>"
	got := p.Run(in, "I want the 16 yard one")
	if strings.Contains(got, "<>") {
		t.Errorf("empty link survived: %q", got)
	}
	if !strings.Contains(got, "<https://") {
		t.Errorf("no link in output: %q", got)
	}
}
