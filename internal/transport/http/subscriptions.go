package http

import (
	"context"
	"net/http"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type SubscriptionPayments interface {
	RecordPayment(ctx context.Context, actor domain.Actor, in app.RecordPaymentInput) (domain.Subscription, error)
	CreateByAdmin(ctx context.Context, actor domain.Actor, in app.AdminSubscriptionInput) (domain.Subscription, error)
	Cancel(ctx context.Context, actor domain.Actor, subscriptionID string) (domain.Subscription, error)
}

type SubscriptionReader interface {
	Current(ctx context.Context, actor domain.Actor, ownerID string) (app.SubscriptionView, error)
	History(ctx context.Context, actor domain.Actor, ownerID string) ([]app.SubscriptionView, error)
}

type recordPaymentRequest struct {
	OwnerID  string      `json:"owner_id"`
	PlanName string      `json:"plan_name" validate:"required"`
	Payment  gatewayBody `json:"payment" validate:"required"`
}

// HandleRecordPayment turns a gateway confirmation into a new subscription.
func HandleRecordPayment(svc SubscriptionPayments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordPaymentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sub, err := svc.RecordPayment(r.Context(), actorFrom(r.Context()), app.RecordPaymentInput{
			OwnerID:  req.OwnerID,
			PlanName: req.PlanName,
			Gateway:  *req.Payment.confirmation(),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newSubscriptionResponse(sub))
	}
}

type adminSubscriptionRequest struct {
	OwnerID     string     `json:"owner_id" validate:"required"`
	PlanName    string     `json:"plan_name" validate:"required"`
	Amount      int64      `json:"amount" validate:"gte=0"`
	ExpiresOn   time.Time  `json:"expires_on" validate:"required"`
	GraceEndsOn *time.Time `json:"grace_ends_on"`
}

func HandleCreateSubscription(svc SubscriptionPayments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminSubscriptionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sub, err := svc.CreateByAdmin(r.Context(), actorFrom(r.Context()), app.AdminSubscriptionInput{
			OwnerID:     req.OwnerID,
			PlanName:    req.PlanName,
			Amount:      req.Amount,
			ExpiresOn:   req.ExpiresOn,
			GraceEndsOn: req.GraceEndsOn,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newSubscriptionResponse(sub))
	}
}

func HandleCancelSubscription(svc SubscriptionPayments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.Cancel(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newSubscriptionResponse(sub))
	}
}

// HandleCurrentSubscription serves the owner's latest subscription with its
// derived status.
func HandleCurrentSubscription(svc SubscriptionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Current(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newSubscriptionView(view))
	}
}

func HandleSubscriptionHistory(svc SubscriptionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.History(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := make([]subscriptionResponse, 0, len(views))
		for _, v := range views {
			out = append(out, newSubscriptionView(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
