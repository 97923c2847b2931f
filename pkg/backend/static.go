package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

var staticTable = map[models.BusinessType][]string{
	models.Technology: {
		"Patent filing for innovative technologies",
		"Trademark registration for brand protection",
		"Trade secret protection strategies",
	},
	models.Manufacturing: {
		"Design patent protection",
		"Process patent considerations",
		"Supply chain IP protection",
	},
	models.Software: {
		"Copyright registration for source code",
		"Patent protection for unique algorithms",
		"Trademark for software product name",
	},
	models.Consulting: {
		"Trademark protection for business name",
		"Copyright for methodologies and training materials",
		"Non-disclosure agreements",
	},
	models.Other: {
		"Consult with an IP attorney",
		"Conduct comprehensive IP audit",
		"Develop tailored IP protection strategy",
	},
}

// Static answers from a fixed table of recommendations keyed by business type.
type Static struct{}

// NewStatic returns the static table backend.
func NewStatic() *Static { return &Static{} }

func (*Static) Name() string { return "static" }

// Recommendations returns a copy of the list for t. Types without their own
// row, including the empty type, get the Other row.
func (*Static) Recommendations(t models.BusinessType) []string {
	recs, ok := staticTable[t]
	if !ok {
		recs = staticTable[models.Other]
	}
	return append([]string(nil), recs...)
}

// Call never fails.
func (s *Static) Call(_ context.Context, req Request) (models.Strategy, error) {
	recs := s.Recommendations(req.Profile.Type)
	return models.Strategy{
		Text:            renderRecommendations(req.Profile, recs),
		Recommendations: recs,
		Backend:         s.Name(),
	}, nil
}

func renderRecommendations(p models.BusinessProfile, recs []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# IP Strategy for %s\n\n", p.Name)
	fmt.Fprintf(&sb, "**Business type:** %s\n\n", p.Type)
	if d := strings.TrimSpace(p.Description); d != "" {
		fmt.Fprintf(&sb, "**Description:** %s\n\n", d)
	}
	sb.WriteString("## Recommended IP Protection Strategies\n\n")
	for i, r := range recs {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}
	return sb.String()
}
