package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
	"github.com/shashank-sundriyal/padamrajjewellers/pkg/response"
)

func (h *LedgerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, customers)
}

func (h *LedgerHandler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var request domain.CustomerRequest
	if err := h.decode(r, &request); err != nil {
		writeError(w, err)
		return
	}

	customer, err := h.service.AddCustomer(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, customer)
}

func (h *LedgerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var request domain.CustomerRequest
	if err := h.decode(r, &request); err != nil {
		writeError(w, err)
		return
	}

	customer, err := h.service.UpdateCustomer(r.Context(), mux.Vars(r)["customerId"], &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, customer)
}

// DeleteCustomer cascades: the customer's loans are removed first.
func (h *LedgerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCustomer(r.Context(), mux.Vars(r)["customerId"]); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, nil)
}

func (h *LedgerHandler) CustomerSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CustomerSummary(r.Context(), mux.Vars(r)["customerId"], h.asOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, summary)
}
