package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shashank-sundriyal/padamrajjewellers/internal/interest"
	"github.com/shashank-sundriyal/padamrajjewellers/internal/service"
	customError "github.com/shashank-sundriyal/padamrajjewellers/pkg/errors"
	"github.com/shashank-sundriyal/padamrajjewellers/pkg/response"
)

// LedgerHandler exposes the ledger service over HTTP.
type LedgerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(service *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service:   service,
		validator: validator.New(),
	}
}

// decode reads and validates a JSON request body.
func (h *LedgerHandler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.WrapValidation("invalid request body")
	}
	if err := h.validator.Struct(dst); err != nil {
		return customError.WrapValidation(err.Error())
	}
	return nil
}

// asOf reads the optional as_of query parameter; zero means "now" and
// the service substitutes its clock.
func (h *LedgerHandler) asOf(r *http.Request) time.Time {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}
	}
	return interest.ParseTimestamp(raw, time.Time{})
}

// writeError maps business error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		switch businessErr.Code {
		case customError.ErrCodeValidationFailed:
			response.BadRequest(w, businessErr.Message, businessErr.Err)
			return
		case customError.ErrCodeCustomerNotFound, customError.ErrCodeLoanNotFound:
			response.NotFound(w, businessErr.Message)
			return
		case customError.ErrCodeLoanAlreadyClaimed:
			response.Conflict(w, businessErr.Message, businessErr.Err)
			return
		}
	}
	response.InternalServerError(w, "operation failed", err)
}
