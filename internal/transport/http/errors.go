package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeValidationFailed      = "validation_failed"
	codeInvalidID             = "invalid_id"
	codeUnauthenticated       = "unauthenticated"
	codeForbidden             = "forbidden"
	codeHostelNotFound        = "hostel_not_found"
	codeRoomNotFound          = "room_not_found"
	codeBookingNotFound       = "booking_not_found"
	codeSubscriptionNotFound  = "subscription_not_found"
	codeComplaintNotFound     = "complaint_not_found"
	codeProfileNotFound       = "profile_not_found"
	codeInsufficientInventory = "insufficient_inventory"
	codeInvalidTransition     = "invalid_transition"
	codeHostelNotBookable     = "hostel_not_bookable"
	codeAlreadyExists         = "already_exists"
	codePaymentMismatch       = "payment_amount_mismatch"
	codePaymentNotSuccessful  = "payment_not_successful"
	codeUnknownPlan           = "unknown_plan"
	codeUpstreamFailure       = "upstream_failure"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrValidation, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrUnknownPlan, http.StatusBadRequest, codeUnknownPlan},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, codeUnauthenticated},
	{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
	{domain.ErrHostelNotFound, http.StatusNotFound, codeHostelNotFound},
	{domain.ErrRoomNotFound, http.StatusNotFound, codeRoomNotFound},
	{domain.ErrBookingNotFound, http.StatusNotFound, codeBookingNotFound},
	{domain.ErrSubscriptionNotFound, http.StatusNotFound, codeSubscriptionNotFound},
	{domain.ErrComplaintNotFound, http.StatusNotFound, codeComplaintNotFound},
	{domain.ErrProfileNotFound, http.StatusNotFound, codeProfileNotFound},
	{domain.ErrInsufficientInventory, http.StatusConflict, codeInsufficientInventory},
	{domain.ErrInvalidTransition, http.StatusConflict, codeInvalidTransition},
	{domain.ErrHostelNotBookable, http.StatusConflict, codeHostelNotBookable},
	{domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists},
	{domain.ErrPaymentAmountMismatch, http.StatusUnprocessableEntity, codePaymentMismatch},
	{domain.ErrPaymentNotSuccessful, http.StatusPaymentRequired, codePaymentNotSuccessful},
	{domain.ErrUpstream, http.StatusBadGateway, codeUpstreamFailure},
}

// writeServiceError maps domain errors to a status and stable code.
// Anything unrecognised is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			msg := s.err.Error()
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				msg = verr.Error()
			}
			if s.status == http.StatusBadGateway {
				loggerFrom(r.Context()).Error("upstream failure", "path", r.URL.Path, "error", err)
			}
			writeError(w, s.status, s.code, msg)
			return
		}
	}
	loggerFrom(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
