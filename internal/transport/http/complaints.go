package http

import (
	"context"
	"net/http"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type Complaints interface {
	File(ctx context.Context, actor domain.Actor, in app.FileComplaintInput) (domain.Complaint, error)
	Transition(ctx context.Context, actor domain.Actor, complaintID string, action domain.ComplaintAction) (domain.Complaint, error)
	List(ctx context.Context, actor domain.Actor, status domain.ComplaintStatus) ([]domain.Complaint, error)
}

type fileComplaintRequest struct {
	HostelID    string `json:"hostel_id"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

func HandleFileComplaint(svc Complaints) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fileComplaintRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := svc.File(r.Context(), actorFrom(r.Context()), app.FileComplaintInput{
			HostelID:    req.HostelID,
			Subject:     req.Subject,
			Description: req.Description,
			Priority:    domain.ComplaintPriority(req.Priority),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newComplaintResponse(c))
	}
}

type complaintStatusRequest struct {
	Action string `json:"action" validate:"required,oneof=start escalate resolve"`
}

func HandleComplaintStatus(svc Complaints) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req complaintStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		c, err := svc.Transition(r.Context(), actorFrom(r.Context()), pathID(r, "id"), domain.ComplaintAction(req.Action))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newComplaintResponse(c))
	}
}

// HandleListComplaints lists what the caller may see, optionally narrowed
// by ?status=.
func HandleListComplaints(svc Complaints) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := domain.ComplaintStatus(r.URL.Query().Get("status"))
		complaints, err := svc.List(r.Context(), actorFrom(r.Context()), status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := make([]complaintResponse, 0, len(complaints))
		for _, c := range complaints {
			out = append(out, newComplaintResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
