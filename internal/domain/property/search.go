package property

import (
	"strings"
	"time"

	"staynest/internal/domain/shared/daterange"
)

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByPriceAsc  CatalogSort = "price_asc"
	SortByPriceDesc CatalogSort = "price_desc"
	SortByRating    CatalogSort = "rating_desc"
	SortByNewest    CatalogSort = "newest"

	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Host          HostID
	Statuses      []Status
	City          string
	Country       string
	LocationQuery string
	Amenities     []string
	MinGuests     int
	PriceMin      int64
	PriceMax      int64
	PropertyTypes []string
	CheckIn       time.Time
	CheckOut      time.Time
	Sort          CatalogSort
	Limit         int
	Offset        int
	OnlyPublished bool
}

type SearchResult struct {
	Items []*Property
	Total int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	normalized.Country = strings.TrimSpace(strings.ToLower(normalized.Country))
	normalized.LocationQuery = strings.TrimSpace(strings.ToLower(normalized.LocationQuery))
	normalized.Amenities = normalizeTokens(normalized.Amenities)
	normalized.PropertyTypes = normalizeTokens(normalized.PropertyTypes)
	if !normalized.CheckIn.IsZero() {
		normalized.CheckIn = daterange.Day(normalized.CheckIn)
	}
	if !normalized.CheckOut.IsZero() {
		normalized.CheckOut = daterange.Day(normalized.CheckOut)
	}
	if !normalized.CheckIn.IsZero() && !normalized.CheckOut.IsZero() && !normalized.CheckOut.After(normalized.CheckIn) {
		normalized.CheckOut = time.Time{}
	}
	if normalized.MinGuests < 0 {
		normalized.MinGuests = 0
	}
	if normalized.PriceMin < 0 {
		normalized.PriceMin = 0
	}
	if normalized.PriceMax > 0 && normalized.PriceMax < normalized.PriceMin {
		normalized.PriceMax = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch normalized.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByRating, SortByNewest:
	default:
		normalized.Sort = SortByPriceAsc
	}
	return normalized
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
