package api

import (
	"net"
	"net/http"
	"strconv"

	"github.com/sells-group/prospect-cli/internal/model"
)

// UserHeader identifies the caller for the duplicate-submission guard.
const UserHeader = "X-Prospect-User"

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.TargetCount == 0 {
		req.TargetCount = h.DefaultCount
	}

	res, err := h.Pipeline.Search(r.Context(), caller(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.Store.ListSearchHistory(r.Context(), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	if items == nil {
		items = []model.SearchHistoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func caller(r *http.Request) string {
	if u := r.Header.Get(UserHeader); u != "" {
		return u
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
