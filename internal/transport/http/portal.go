package http

import (
	"net/http"
)

// PortalHandler renders the protected portal pages. The page content stands
// in for the downstream application; what the gateway owns is that these
// handlers are only ever reached behind a GRANT decision.
type PortalHandler struct{}

func NewPortalHandler() *PortalHandler {
	return &PortalHandler{}
}

func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	// Everything that is not a registered route falls through to "/";
	// only the landing path itself renders the dashboard.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	subject, _ := r.Context().Value("subject").(string)
	render(w, dashboardTmpl, http.StatusOK, dashboardData{Subject: subject})
}

func (h *PortalHandler) Grades(w http.ResponseWriter, r *http.Request) {
	render(w, sectionTmpl, http.StatusOK, sectionData{
		Title:       "Prüfungen und Noten",
		Description: "Hier finden Sie Ihre Prüfungsanmeldungen und Notenübersichten.",
	})
}

func (h *PortalHandler) Documents(w http.ResponseWriter, r *http.Request) {
	render(w, sectionTmpl, http.StatusOK, sectionData{
		Title:       "Dokumentenmanagement",
		Description: "Hier verwalten Sie Ihre Bescheinigungen und Dokumente.",
	})
}
