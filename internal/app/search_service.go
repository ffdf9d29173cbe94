package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/pricing"
)

type SearchRepository interface {
	// ListBookableHostels returns verified, non-deleted hostels with their
	// live rooms.
	ListBookableHostels(ctx context.Context) ([]domain.HostelWithRooms, error)
}

// SearchCache stores encoded result pages by filter key.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Filter struct {
	Query     string
	Gender    domain.HostelType
	MinPrice  *int64
	MaxPrice  *int64
	Amenities map[string]bool
}

func (f Filter) validate() error {
	if f.Gender != "" && !f.Gender.Valid() {
		return domain.Invalid("gender", "must be one of boys, girls, co-ed")
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return domain.Invalid("min_price", "must not be negative")
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return domain.Invalid("max_price", "must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return domain.Invalid("min_price", "must not exceed max_price")
	}
	return nil
}

// Key is a canonical form of the filter used as a cache key.
func (f Filter) Key() string {
	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(strings.ToLower(strings.TrimSpace(f.Query)))
	b.WriteString("|g=")
	b.WriteString(string(f.Gender))
	b.WriteString("|min=")
	if f.MinPrice != nil {
		b.WriteString(strconv.FormatInt(*f.MinPrice, 10))
	}
	b.WriteString("|max=")
	if f.MaxPrice != nil {
		b.WriteString(strconv.FormatInt(*f.MaxPrice, 10))
	}
	b.WriteString("|a=")
	b.WriteString(strings.Join(requiredAmenities(f.Amenities), ","))
	return b.String()
}

func requiredAmenities(flags map[string]bool) []string {
	out := make([]string, 0, len(flags))
	for name, on := range flags {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

type SearchResult struct {
	Hostel domain.HostelWithRooms
	// CheapestDaily is the lowest daily tier across the hostel's rooms; zero
	// when the hostel has no rooms.
	CheapestDaily int64
	Display       pricing.DisplayPrices
}

type SearchService struct {
	repo   SearchRepository
	cache  SearchCache
	logger *slog.Logger
}

type SearchServiceOption func(*SearchService)

func WithSearchCache(c SearchCache) SearchServiceOption {
	return func(s *SearchService) { s.cache = c }
}

func WithSearchLogger(logger *slog.Logger) SearchServiceOption {
	return func(s *SearchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSearchService(repo SearchRepository, opts ...SearchServiceOption) *SearchService {
	svc := &SearchService{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Search lists live hostels matching every applied criterion. Cache
// failures fall back to the repository.
func (s *SearchService) Search(ctx context.Context, f Filter) ([]SearchResult, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	key := f.Key()
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("search cache read failed", "error", err)
		} else if ok {
			var cached []SearchResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	hostels, err := s.repo.ListBookableHostels(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(hostels))
	for _, h := range hostels {
		if !h.Bookable() {
			continue
		}
		cheapest, hasRooms := cheapestDaily(h.Rooms)
		if !f.Matches(h, cheapest, hasRooms) {
			continue
		}
		results = append(results, SearchResult{Hostel: h, CheapestDaily: cheapest, Display: pricing.Display(cheapest)})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(results); err == nil {
			if err := s.cache.Set(ctx, key, raw); err != nil {
				s.logger.Warn("search cache write failed", "error", err)
			}
		}
	}
	return results, nil
}

// Matches applies the filter to one hostel. Amenities not flagged in the
// filter are ignored rather than required to be absent.
func (f Filter) Matches(h domain.HostelWithRooms, cheapest int64, hasRooms bool) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		name := strings.ToLower(h.Name)
		location := strings.ToLower(h.Address.String())
		if !strings.Contains(name, q) && !strings.Contains(location, q) {
			return false
		}
	}
	if f.Gender != "" && h.Type != f.Gender {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		if !hasRooms {
			return false
		}
		if f.MinPrice != nil && cheapest < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && cheapest > *f.MaxPrice {
			return false
		}
	}
	for _, name := range requiredAmenities(f.Amenities) {
		if !h.Amenities[name] {
			return false
		}
	}
	return true
}

func cheapestDaily(rooms []domain.Room) (int64, bool) {
	var min int64
	found := false
	for _, r := range rooms {
		if r.DeletedAt != nil {
			continue
		}
		if !found || r.PricingDaily < min {
			min = r.PricingDaily
			found = true
		}
	}
	return min, found
}
