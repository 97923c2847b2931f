// Package prompt renders the strategy request sent to text-generation backends.
package prompt

import (
	"strings"
	"text/template"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Sections are the headings every generated document is asked to contain, in order.
var Sections = []string{
	"Intellectual Property Landscape Analysis",
	"Recommended IP Protection Strategies",
	"Specific Recommendations",
	"Strategic Insights",
	"Compliance Considerations",
	"Financial Implications",
}

const strategyTemplate = `Provide a comprehensive Intellectual Property strategy for a {{.Type}} business.
{{- if .Description}}
Business description: {{.Description}}
{{- end}}

Structure the response as a markdown document with these sections:
{{range $i, $s := .Sections}}{{inc $i}}. {{$s}}
{{end}}
Be specific to the {{.Type}} sector, cite the relevant forms of protection (patents, trademarks, copyrights, trade secrets) and keep each section concise.`

var tmpl = template.Must(template.New("strategy").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(strategyTemplate))

// Render builds the prompt for a profile. Only the business type and
// description parameterize the prompt; the name is not sent upstream.
func Render(p models.BusinessProfile) string {
	var sb strings.Builder
	// Execute only fails on template or writer errors, neither possible here.
	_ = tmpl.Execute(&sb, struct {
		Type        models.BusinessType
		Description string
		Sections    []string
	}{
		Type:        p.Type,
		Description: strings.TrimSpace(p.Description),
		Sections:    Sections,
	})
	return sb.String()
}

// StripEcho removes the prompt from generated text when the backend echoes
// its input. This is best effort: a leading copy is trimmed, otherwise
// everything up to the last full copy is dropped. Partial echoes are kept.
func StripEcho(generated, prompt string) string {
	text := generated
	if prompt != "" {
		if rest, ok := strings.CutPrefix(text, prompt); ok {
			text = rest
		} else if i := strings.LastIndex(text, prompt); i >= 0 {
			text = text[i+len(prompt):]
		}
	}
	return strings.TrimSpace(text)
}
