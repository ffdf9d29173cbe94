package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

func TestWriteServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{name: "validation keeps field message", err: domain.Invalid("plan", "must be one of daily, weekly, monthly"), status: http.StatusBadRequest, code: codeValidationFailed, msg: "validation failed: plan must be one of daily, weekly, monthly"},
		{name: "invalid id", err: domain.ErrInvalidID, status: http.StatusBadRequest, code: codeInvalidID},
		{name: "unauthenticated", err: domain.ErrUnauthenticated, status: http.StatusUnauthorized, code: codeUnauthenticated},
		{name: "forbidden", err: domain.ErrForbidden, status: http.StatusForbidden, code: codeForbidden},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", domain.ErrHostelNotFound), status: http.StatusNotFound, code: codeHostelNotFound},
		{name: "sold out", err: domain.ErrInsufficientInventory, status: http.StatusConflict, code: codeInsufficientInventory},
		{name: "bad transition", err: domain.ErrInvalidTransition, status: http.StatusConflict, code: codeInvalidTransition},
		{name: "amount mismatch", err: domain.ErrPaymentAmountMismatch, status: http.StatusUnprocessableEntity, code: codePaymentMismatch},
		{name: "failed payment", err: domain.ErrPaymentNotSuccessful, status: http.StatusPaymentRequired, code: codePaymentNotSuccessful},
		{name: "unknown plan", err: domain.ErrUnknownPlan, status: http.StatusBadRequest, code: codeUnknownPlan},
		{name: "unexpected", err: errors.New("db exploded"), status: http.StatusInternalServerError, code: codeInternalError, msg: "internal error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil), tt.err)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, resp.Code)
			}
			if tt.msg != "" && resp.Error != tt.msg {
				t.Fatalf("expected message %q, got %q", tt.msg, resp.Error)
			}
		})
	}
}
