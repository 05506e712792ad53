package dto

import (
	"time"

	domainproperty "staynest/internal/domain/property"
)

type AddressDTO struct {
	Line1   string  `json:"line1"`
	Line2   string  `json:"line2,omitempty"`
	City    string  `json:"city"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

type PricingScheduleDTO struct {
	BasePrice              MoneyDTO `json:"base_price"`
	CleaningFee            MoneyDTO `json:"cleaning_fee"`
	ServiceFee             MoneyDTO `json:"service_fee"`
	TaxRatePercent         int      `json:"tax_rate_percent"`
	MinimumStayNights      int      `json:"minimum_stay_nights"`
	MaximumStayNights      int      `json:"maximum_stay_nights,omitempty"`
	WeeklyDiscountPercent  int      `json:"weekly_discount_percent,omitempty"`
	MonthlyDiscountPercent int      `json:"monthly_discount_percent,omitempty"`
}

// CatalogItem is the public search-result card.
type CatalogItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	PropertyType string   `json:"property_type"`
	MaxGuests    int      `json:"max_guests"`
	BasePrice    MoneyDTO `json:"base_price"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"review_count"`
	ThumbnailURL string   `json:"thumbnail_url"`
}

type CatalogPage struct {
	Items []CatalogItem `json:"items"`
	Total int           `json:"total"`
}

// PropertyOverview is the public detail page payload.
type PropertyOverview struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	PropertyType string             `json:"property_type"`
	Address      AddressDTO         `json:"address"`
	Amenities    []string           `json:"amenities"`
	MaxGuests    int                `json:"max_guests"`
	Pricing      PricingScheduleDTO `json:"pricing"`
	Photos       []string           `json:"photos"`
	Rating       float64            `json:"rating"`
	ReviewCount  int                `json:"review_count"`
}

// HostPropertyDetail is the owner's management view, draft fields included.
type HostPropertyDetail struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Title     string           `json:"title"`
	Overview  PropertyOverview `json:"overview"`
	Calendar  Calendar         `json:"calendar"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type HostPropertyCollection struct {
	Items []HostPropertyDetail `json:"items"`
}

func mapAddress(a domainproperty.Address) AddressDTO {
	return AddressDTO{
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		Region:  a.Region,
		Country: a.Country,
		Lat:     a.Lat,
		Lon:     a.Lon,
	}
}

func MapPricingSchedule(s domainproperty.PricingSchedule) PricingScheduleDTO {
	return PricingScheduleDTO{
		BasePrice:              MapMoney(s.BasePrice),
		CleaningFee:            MapMoney(s.CleaningFee),
		ServiceFee:             MapMoney(s.ServiceFee),
		TaxRatePercent:         s.TaxRatePercent,
		MinimumStayNights:      s.MinimumStayNights,
		MaximumStayNights:      s.MaximumStayNights,
		WeeklyDiscountPercent:  s.WeeklyDiscountPercent,
		MonthlyDiscountPercent: s.MonthlyDiscountPercent,
	}
}

func MapCatalogItem(p *domainproperty.Property) CatalogItem {
	return CatalogItem{
		ID:           string(p.ID),
		Title:        p.Title,
		City:         p.Address.City,
		Country:      p.Address.Country,
		PropertyType: p.PropertyType,
		MaxGuests:    p.MaxGuests,
		BasePrice:    MapMoney(p.Pricing.BasePrice),
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		ThumbnailURL: p.ThumbnailURL,
	}
}

func MapPropertyOverview(p *domainproperty.Property) PropertyOverview {
	return PropertyOverview{
		ID:           string(p.ID),
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: p.PropertyType,
		Address:      mapAddress(p.Address),
		Amenities:    append([]string(nil), p.Amenities...),
		MaxGuests:    p.MaxGuests,
		Pricing:      MapPricingSchedule(p.Pricing),
		Photos:       append([]string(nil), p.Photos...),
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
	}
}

func MapHostPropertyDetail(p *domainproperty.Property) HostPropertyDetail {
	return HostPropertyDetail{
		ID:        string(p.ID),
		Status:    string(p.Status),
		Title:     p.Title,
		Overview:  MapPropertyOverview(p),
		Calendar:  MapCalendar(p),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type PhotoUploadResult struct {
	PropertyID   string   `json:"property_id"`
	Photos       []string `json:"photos"`
	ThumbnailURL string   `json:"thumbnail_url"`
}
