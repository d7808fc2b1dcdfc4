package handler

import (
	"net/http"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/domain"
	"github.com/shashank-sundriyal/padamrajjewellers/pkg/response"
)

// GetSettings creates the singleton with defaults on first read.
func (h *LedgerHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, settings)
}

func (h *LedgerHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var request domain.SettingsRequest
	if err := h.decode(r, &request); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.service.SaveSettings(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, settings)
}
