package handler

import (
	"net/http"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/export"
	"github.com/shashank-sundriyal/padamrajjewellers/pkg/response"
)

// Export streams the xlsx backup: one sheet per entity collection.
func (h *LedgerHandler) Export(w http.ResponseWriter, r *http.Request) {
	customers, loans, settings, err := h.service.ExportSnapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := export.Workbook(customers, loans, settings)
	if err != nil {
		response.InternalServerError(w, "failed to build workbook", err)
		return
	}

	response.Attachment(w, export.Filename, export.ContentType, data)
}
