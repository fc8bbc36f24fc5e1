package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/coach"
	"github.com/sells-group/prospect-cli/internal/model"
)

type pitchResponse struct {
	LeadID       string `json:"lead_id"`
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}

func (h *handlers) pitch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lead, err := h.Store.GetLead(ctx, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	svc, err := h.Store.GetServiceContext(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}

	msg, err := h.Coach.Pitch(ctx, *lead, svc)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pitchResponse{
		LeadID:       lead.ID,
		Message:      msg,
		WhatsAppLink: h.Region.WhatsAppLink(lead.Phone, msg),
	})
}

func (h *handlers) audit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lead, err := h.Store.GetLead(ctx, chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	svc, err := h.Store.GetServiceContext(ctx)
	if err != nil {
		fail(w, r, err)
		return
	}

	text, err := h.Coach.Audit(ctx, *lead, svc)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.Store.UpdateLeadAudit(ctx, lead.ID, text); err != nil {
		zap.L().Warn("api: failed to store audit", zap.String("lead_id", lead.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"lead_id": lead.ID, "audit": text})
}

func (h *handlers) getService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Store.GetServiceContext(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if svc == nil {
		svc = &model.ServiceContext{}
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *handlers) putService(w http.ResponseWriter, r *http.Request) {
	var svc model.ServiceContext
	if !decode(w, r, &svc) {
		return
	}
	if strings.TrimSpace(svc.ServiceName) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "service_name is required")
		return
	}
	if err := h.Store.SetServiceContext(r.Context(), svc); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (h *handlers) insights(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ServiceName string `json:"service_name"`
		Description string `json:"description"`
	}
	if r.ContentLength != 0 && !decode(w, r, &body) {
		return
	}
	ctx := r.Context()
	if body.ServiceName == "" {
		svc, err := h.Store.GetServiceContext(ctx)
		if err != nil {
			fail(w, r, err)
			return
		}
		if svc != nil {
			body.ServiceName, body.Description = svc.ServiceName, svc.Description
		}
	}

	out, err := h.Coach.Insights(ctx, body.ServiceName, body.Description)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) sequence(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Store.GetServiceContext(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	steps, err := h.Coach.Sequence(r.Context(), svc)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

type roleplayRequest struct {
	Profile string                  `json:"profile"`
	History []model.RoleplayMessage `json:"history"`
}

// roleplay returns the prospect's next message. An empty history starts a
// new session with the opening line.
func (h *handlers) roleplay(w http.ResponseWriter, r *http.Request) {
	var req roleplayRequest
	if !decode(w, r, &req) {
		return
	}
	profile := model.ParseRoleplayProfile(req.Profile)
	if len(req.History) == 0 {
		if !profile.Valid() {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "unknown roleplay profile")
			return
		}
		writeJSON(w, http.StatusOK, coach.OpeningLine())
		return
	}

	svc, err := h.Store.GetServiceContext(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	msg, err := h.Coach.Roleplay(r.Context(), profile, req.History, svc)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
