// Package renderer turns cellar data into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var files embed.FS

// templates holds the markdown templates, rooted at the templates folder.
var templates, _ = fs.Sub(files, "templates")

// RenderCellar renders a list of wines to a markdown string.
func RenderCellar(c *Cellar) string {
	return renderTemplate("cellar", "cellar.md", nil, c)
}

// RenderWine renders a wine with its consumptions and tasting notes.
func RenderWine(w *WineDetail) string {
	partials := map[string]string{
		"wine_facts":        "wine_facts.md",
		"wine_consumptions": "wine_consumptions.md",
		"wine_notes":        "wine_notes.md",
	}
	if len(w.Consumptions) == 0 {
		partials["wine_consumptions"] = ""
	}
	return renderTemplate("wine", "wine.md", partials, w)
}

// RenderReconciliation renders the outcome of a reconciliation run.
func RenderReconciliation(r *Reconciliation) string {
	partials := map[string]string{
		"reconciliation_counts":   "reconciliation_counts.md",
		"reconciliation_problems": "reconciliation_problems.md",
	}
	return renderTemplate("reconciliation", "reconciliation.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	"cell": cell,
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
