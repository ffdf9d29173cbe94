package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/events"
)

// Services groups the application services the router exposes.
type Services struct {
	Listings      *app.ListingService
	Inventory     *app.InventoryService
	Reservations  *app.ReservationService
	Search        *app.SearchService
	Wishlist      *app.WishlistService
	Subscriptions *app.SubscriptionService
	Complaints    *app.ComplaintService
	Profiles      *app.ProfileService
}

type RouterConfig struct {
	Verifier    TokenVerifier
	CORSOrigins []string
	Hub         *events.Hub
	Logger      *slog.Logger
}

// NewRouter mounts every API route and wraps them in the middleware chain.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	if cfg.Hub != nil {
		api.Handle("/ws", HandleEvents(cfg.Hub, cfg.CORSOrigins)).Methods(http.MethodGet)
	}
	api.Handle("/search", HandleSearch(svc.Search)).Methods(http.MethodGet)

	api.Handle("/hostels", HandleSubmitHostel(svc.Listings)).Methods(http.MethodPost)
	api.Handle("/hostels/{id}", HandleGetHostel(svc.Listings)).Methods(http.MethodGet)
	api.Handle("/hostels/{id}", HandleDeleteHostel(svc.Listings)).Methods(http.MethodDelete)
	api.Handle("/hostels/{id}/submit", HandleHostelTransition(svc.Listings, domain.ListingSubmit)).Methods(http.MethodPost)
	api.Handle("/hostels/{id}/verify", HandleHostelTransition(svc.Listings, domain.ListingVerify)).Methods(http.MethodPost)
	api.Handle("/hostels/{id}/reject", HandleHostelTransition(svc.Listings, domain.ListingReject)).Methods(http.MethodPost)
	api.Handle("/hostels/{id}/suspend", HandleHostelTransition(svc.Listings, domain.ListingSuspend)).Methods(http.MethodPost)
	api.Handle("/hostels/{id}/rooms", HandleAddRoom(svc.Listings)).Methods(http.MethodPost)
	api.Handle("/hostels/{id}/bookings", HandleListHostelBookings(svc.Reservations)).Methods(http.MethodGet)
	api.Handle("/rooms/{id}/availability", HandleRoomAvailability(svc.Inventory)).Methods(http.MethodGet)
	api.Handle("/owners/{id}/hostels", HandleListOwnerHostels(svc.Listings)).Methods(http.MethodGet)
	api.Handle("/admin/hostels/pending", HandleListPendingHostels(svc.Listings)).Methods(http.MethodGet)

	api.Handle("/bookings", HandleCreateBooking(svc.Reservations)).Methods(http.MethodPost)
	api.Handle("/bookings", HandleListMyBookings(svc.Reservations)).Methods(http.MethodGet)
	api.Handle("/bookings/{id}", HandleGetBooking(svc.Reservations)).Methods(http.MethodGet)
	api.Handle("/bookings/{id}/cancel", HandleCancelBooking(svc.Reservations)).Methods(http.MethodPost)

	api.Handle("/subscriptions/payments", HandleRecordPayment(svc.Subscriptions)).Methods(http.MethodPost)
	api.Handle("/subscriptions/{id}/cancel", HandleCancelSubscription(svc.Subscriptions)).Methods(http.MethodPost)
	api.Handle("/admin/subscriptions", HandleCreateSubscription(svc.Subscriptions)).Methods(http.MethodPost)
	api.Handle("/owners/{id}/subscription", HandleCurrentSubscription(svc.Subscriptions)).Methods(http.MethodGet)
	api.Handle("/owners/{id}/subscriptions", HandleSubscriptionHistory(svc.Subscriptions)).Methods(http.MethodGet)

	api.Handle("/complaints", HandleFileComplaint(svc.Complaints)).Methods(http.MethodPost)
	api.Handle("/complaints", HandleListComplaints(svc.Complaints)).Methods(http.MethodGet)
	api.Handle("/complaints/{id}/status", HandleComplaintStatus(svc.Complaints)).Methods(http.MethodPost)

	api.Handle("/wishlist", HandleListWishlist(svc.Wishlist)).Methods(http.MethodGet)
	api.Handle("/wishlist/{id}", HandleAddToWishlist(svc.Wishlist)).Methods(http.MethodPut)
	api.Handle("/wishlist/{id}", HandleRemoveFromWishlist(svc.Wishlist)).Methods(http.MethodDelete)

	api.Handle("/me", HandleGetProfile(svc.Profiles)).Methods(http.MethodGet)
	api.Handle("/me", HandleSaveProfile(svc.Profiles)).Methods(http.MethodPut)

	var handler http.Handler = r
	handler = Authenticate(cfg.Verifier, handler)
	handler = CORS(cfg.CORSOrigins, handler)
	handler = Recoverer(handler)
	return RequestLogger(handler, cfg.Logger)
}
