package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
	"github.com/shashank-sundriyal/padamrajjewellers/pkg/response"
)

func (h *LedgerHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context(), r.URL.Query().Get("q"), h.asOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loans)
}

func (h *LedgerHandler) AddLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := h.decode(r, &request); err != nil {
		writeError(w, err)
		return
	}

	loan, err := h.service.AddLoan(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, loan)
}

func (h *LedgerHandler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.UpdateLoanRequest
	if err := h.decode(r, &request); err != nil {
		writeError(w, err)
		return
	}

	loan, err := h.service.UpdateLoan(r.Context(), mux.Vars(r)["loanId"], &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

func (h *LedgerHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLoan(r.Context(), mux.Vars(r)["loanId"]); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, nil)
}

// ClaimLoan marks collateral as returned; a second claim gets a 409.
func (h *LedgerHandler) ClaimLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.service.ClaimLoan(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, loan)
}

// PreviewLoan computes a due amount with optional overrides, without
// persisting anything.
func (h *LedgerHandler) PreviewLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.PreviewRequest
	if err := h.decode(r, &request); err != nil {
		writeError(w, err)
		return
	}

	preview, err := h.service.PreviewLoan(r.Context(), mux.Vars(r)["loanId"], &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, preview)
}
