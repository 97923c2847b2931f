package prompt

import (
	"strings"
	"testing"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

func TestRender(t *testing.T) {
	p := models.BusinessProfile{Name: "Acme", Type: models.Biotechnology, Description: "gene therapy startup"}
	out := Render(p)

	if !strings.Contains(out, "Biotechnology business") {
		t.Errorf("prompt missing business type:\n%s", out)
	}
	if !strings.Contains(out, "Business description: gene therapy startup") {
		t.Errorf("prompt missing description:\n%s", out)
	}
	for i, s := range Sections {
		if !strings.Contains(out, s) {
			t.Errorf("prompt missing section %d %q", i+1, s)
		}
	}
	if !strings.Contains(out, "6. Financial Implications") {
		t.Errorf("sections should be numbered:\n%s", out)
	}
	if strings.Contains(out, "Acme") {
		t.Error("business name should not be sent upstream")
	}
}

func TestRenderWithoutDescription(t *testing.T) {
	out := Render(models.BusinessProfile{Name: "Acme", Type: models.Software})
	if strings.Contains(out, "Business description") {
		t.Errorf("empty description should be omitted:\n%s", out)
	}
}

func TestRenderDeterministic(t *testing.T) {
	p := models.BusinessProfile{Name: "Acme", Type: models.Software, Description: "x"}
	if Render(p) != Render(p) {
		t.Error("prompt rendering should be deterministic")
	}
}

func TestStripEcho(t *testing.T) {
	const prompt = "Write a strategy."
	tests := []struct {
		name      string
		generated string
		want      string
	}{
		{"leading echo", prompt + "\n\n## Landscape\nText", "## Landscape\nText"},
		{"no echo", "## Landscape\nText", "## Landscape\nText"},
		{"embedded echo", "<s>[INST] " + prompt + " [/INST] Answer", "[/INST] Answer"},
		{"partial echo kept", "Write a strat... Answer", "Write a strat... Answer"},
		{"only echo", prompt + "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripEcho(tt.generated, prompt); got != tt.want {
				t.Errorf("StripEcho() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := StripEcho(" text ", ""); got != "text" {
		t.Errorf("empty prompt should only trim, got %q", got)
	}
}
