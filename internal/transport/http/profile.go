package http

import (
	"context"
	"net/http"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type Profiles interface {
	Me(ctx context.Context, actor domain.Actor) (domain.Profile, error)
	Save(ctx context.Context, actor domain.Actor, in app.ProfileInput) (domain.Profile, error)
}

type profileRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	Phone        string `json:"phone"`
	BusinessName string `json:"business_name"`
	SignatureURL string `json:"signature_url" validate:"omitempty,url"`
}

func HandleGetProfile(svc Profiles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Me(r.Context(), actorFrom(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newProfileResponse(p))
	}
}

func HandleSaveProfile(svc Profiles) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := svc.Save(r.Context(), actorFrom(r.Context()), app.ProfileInput{
			FullName:     req.FullName,
			Phone:        req.Phone,
			BusinessName: req.BusinessName,
			SignatureURL: req.SignatureURL,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newProfileResponse(p))
	}
}
