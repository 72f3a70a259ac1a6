package http

import (
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

var (
	loginTmpl     = template.Must(template.ParseFS(embeddedTemplates, "templates/login.html"))
	dashboardTmpl = template.Must(template.ParseFS(embeddedTemplates, "templates/dashboard.html"))
	sectionTmpl   = template.Must(template.ParseFS(embeddedTemplates, "templates/section.html"))
)

// loginData feeds the challenge page. Error is either empty or the single
// generic rejection message; Password is deliberately absent.
type loginData struct {
	Error           string
	Username        string
	UpstreamEnabled bool
}

type dashboardData struct {
	Subject string
}

type sectionData struct {
	Title       string
	Description string
}

func render(w http.ResponseWriter, tmpl *template.Template, status int, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("[HTTP] Failed to render template: %v", err)
	}
}
