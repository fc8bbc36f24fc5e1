package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/export"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

// dashboardLimit bounds the leads counted on the dashboard.
const dashboardLimit = 100_000

func leadFilter(r *http.Request) store.LeadFilter {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return store.LeadFilter{
		Status: model.LeadStatus(q.Get("status")),
		Score:  model.Score(q.Get("score")),
		Query:  q.Get("q"),
		Limit:  limit,
		Offset: offset,
	}
}

func (h *handlers) listLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Store.ListLeads(r.Context(), leadFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *handlers) saveLeads(w http.ResponseWriter, r *http.Request) {
	var leads []model.Lead
	if !decode(w, r, &leads) {
		return
	}
	n, err := h.Pipeline.Save(r.Context(), leads)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"saved": n})
}

func (h *handlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status model.LeadStatus `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Store.UpdateLeadStatus(r.Context(), id, body.Status); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(body.Status)})
}

func (h *handlers) deleteLead(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteLead(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Store.ListLeads(r.Context(), leadFilter(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	if err := export.WriteCSV(w, leads); err != nil {
		zap.L().Error("api: csv export failed", zap.Error(err))
	}
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Store.ListLeads(r.Context(), store.LeadFilter{Limit: dashboardLimit})
	if err != nil {
		fail(w, r, err)
		return
	}
	svc, err := h.Store.GetServiceContext(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.NewDashboardStats(leads, svc))
}
