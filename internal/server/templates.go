package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"resumelens/internal/analysis"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"scoreBar": analysis.ScoreBarPercent,
	"scoreClass": func(score float64) string {
		return string(analysis.ClassifyScore(score))
	},
	"categoryLabel": func(name string) string {
		return strings.ReplaceAll(name, "_", " ")
	},
}

// pageTemplates maps page names to their parsed template sets.
// Each page is parsed together with the shared base layout.
var pageTemplates = parsePageTemplates()

func parsePageTemplates() map[string]*template.Template {
	pages := []string{"upload", "results", "optimization", "linkedin"}
	parsed := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		parsed[page] = template.Must(
			template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS,
				"templates/base.html",
				fmt.Sprintf("templates/%s.html", page)),
		)
	}

	return parsed
}

// renderPage writes a rendered page template with the given status code
func (s *Server) renderPage(w http.ResponseWriter, page string, statusCode int, data any) {
	tmpl, ok := pageTemplates[page]
	if !ok {
		s.Logger.Error("Unknown page template", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Render to a buffer first so template failures do not produce torn pages
	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		s.Logger.LogError(err, "Failed to render page", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(buf.String()))
}
