package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type HostelSearcher interface {
	Search(ctx context.Context, f app.Filter) ([]app.SearchResult, error)
}

type Wishlist interface {
	Add(ctx context.Context, actor domain.Actor, hostelID string) (domain.WishlistItem, error)
	Remove(ctx context.Context, actor domain.Actor, hostelID string) error
	List(ctx context.Context, actor domain.Actor) ([]domain.WishlistItem, error)
}

// HandleSearch reads q, gender, min_price, max_price and a comma separated
// amenities list from the query string.
func HandleSearch(svc HostelSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filterFromQuery(r)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		results, err := svc.Search(r.Context(), f)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := make([]searchResultResponse, 0, len(results))
		for _, res := range results {
			out = append(out, searchResultResponse{
				Hostel:        newHostelWithRoomsResponse(res.Hostel),
				CheapestDaily: res.CheapestDaily,
				Display:       newDisplayPrices(res.Display),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func filterFromQuery(r *http.Request) (app.Filter, error) {
	q := r.URL.Query()
	f := app.Filter{
		Query:  q.Get("q"),
		Gender: domain.HostelType(q.Get("gender")),
	}
	var err error
	if f.MinPrice, err = optionalInt(q.Get("min_price"), "min_price"); err != nil {
		return app.Filter{}, err
	}
	if f.MaxPrice, err = optionalInt(q.Get("max_price"), "max_price"); err != nil {
		return app.Filter{}, err
	}
	if raw := q.Get("amenities"); raw != "" {
		f.Amenities = make(map[string]bool)
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				f.Amenities[name] = true
			}
		}
	}
	return f, nil
}

func optionalInt(raw, field string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.Invalid(field, "must be an integer")
	}
	return &v, nil
}

// HandleAddToWishlist is idempotent; adding a saved hostel again succeeds.
func HandleAddToWishlist(svc Wishlist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.Add(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, wishlistItemResponse{HostelID: item.HostelID, CreatedAt: item.CreatedAt})
	}
}

func HandleRemoveFromWishlist(svc Wishlist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(r.Context(), actorFrom(r.Context()), pathID(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleListWishlist(svc Wishlist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), actorFrom(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := make([]wishlistItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, wishlistItemResponse{HostelID: item.HostelID, CreatedAt: item.CreatedAt})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
