package api

import (
	"net/http"

	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/factory"
)

// =============================================================================
// TEMPLATE ENDPOINTS
// =============================================================================

// ListTemplates returns the preset organisations.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := factory.Templates()
	result := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		result[i] = toTemplateDTO(t)
	}
	writeJSON(w, http.StatusOK, result)
}

// LoadTemplate replaces a session's jobs and method with a template.
func (h *Handler) LoadTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !h.decode(w, r, &req) {
		return
	}
	tpl, err := factory.LookupTemplate(req.TemplateID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.update(r, func(s *engine.Session) error {
		s.LoadTemplate(tpl)
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}
