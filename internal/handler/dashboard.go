package handler

import (
	"net/http"

	"github.com/shashank-sundriyal/padamrajjewellers/pkg/response"
)

func (h *LedgerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Dashboard(r.Context(), h.asOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, snapshot)
}

func (h *LedgerHandler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.PortfolioSummary(r.Context(), h.asOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, summary)
}
