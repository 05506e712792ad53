package properties

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	"staynest/internal/app/uow"
	domainproperty "staynest/internal/domain/property"
	"staynest/internal/domain/shared/money"
)

const (
	createHostPropertyKey    = "host.properties.create"
	updateHostPropertyKey    = "host.properties.update"
	publishHostPropertyKey   = "host.properties.publish"
	unpublishHostPropertyKey = "host.properties.unpublish"
	setPricingKey            = "host.properties.pricing"
)

var ErrPropertyNotOwned = errors.New("property: not owned by host")

type HostPropertyPayload struct {
	Title        string
	Description  string
	PropertyType string
	Address      domainproperty.Address
	Amenities    []string
	MaxGuests    int
}

type PricingPayload struct {
	BasePrice              int64
	CleaningFee            int64
	ServiceFee             int64
	TaxRatePercent         int
	MinimumStayNights      int
	MaximumStayNights      int
	WeeklyDiscountPercent  int
	MonthlyDiscountPercent int
}

func (p PricingPayload) schedule() domainproperty.PricingSchedule {
	return domainproperty.PricingSchedule{
		BasePrice:              money.Rupees(p.BasePrice),
		CleaningFee:            money.Rupees(p.CleaningFee),
		ServiceFee:             money.Rupees(p.ServiceFee),
		TaxRatePercent:         p.TaxRatePercent,
		MinimumStayNights:      p.MinimumStayNights,
		MaximumStayNights:      p.MaximumStayNights,
		WeeklyDiscountPercent:  p.WeeklyDiscountPercent,
		MonthlyDiscountPercent: p.MonthlyDiscountPercent,
	}
}

type CreateHostPropertyCommand struct {
	HostID  string
	Payload HostPropertyPayload
}

func (c CreateHostPropertyCommand) Key() string { return createHostPropertyKey }

type CreateHostPropertyHandler struct {
	Logger *slog.Logger
}

func (h *CreateHostPropertyHandler) Handle(ctx context.Context, cmd CreateHostPropertyCommand) (*dto.HostPropertyDetail, error) {
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, errors.New("host id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:           domainproperty.ID(uuid.NewString()),
		Host:         domainproperty.HostID(cmd.HostID),
		Title:        cmd.Payload.Title,
		Description:  cmd.Payload.Description,
		PropertyType: cmd.Payload.PropertyType,
		Address:      cmd.Payload.Address,
		Amenities:    cmd.Payload.Amenities,
		MaxGuests:    cmd.Payload.MaxGuests,
		Now:          time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host property created", "property_id", prop.ID, "host_id", cmd.HostID)
	}

	result := dto.MapHostPropertyDetail(prop)
	return &result, nil
}

type UpdateHostPropertyCommand struct {
	HostID     string
	PropertyID string
	Payload    HostPropertyPayload
}

func (c UpdateHostPropertyCommand) Key() string { return updateHostPropertyKey }

type UpdateHostPropertyHandler struct {
	Logger *slog.Logger
}

func (h *UpdateHostPropertyHandler) Handle(ctx context.Context, cmd UpdateHostPropertyCommand) (*dto.HostPropertyDetail, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := prop.Update(domainproperty.UpdateParams{
		Title:        cmd.Payload.Title,
		Description:  cmd.Payload.Description,
		PropertyType: cmd.Payload.PropertyType,
		Address:      cmd.Payload.Address,
		Amenities:    cmd.Payload.Amenities,
		MaxGuests:    cmd.Payload.MaxGuests,
	}, time.Now()); err != nil {
		return nil, err
	}

	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host property updated", "property_id", prop.ID, "host_id", cmd.HostID)
	}

	result := dto.MapHostPropertyDetail(prop)
	return &result, nil
}

type SetPricingCommand struct {
	HostID     string
	PropertyID string
	Payload    PricingPayload
}

func (c SetPricingCommand) Key() string { return setPricingKey }

type SetPricingHandler struct {
	Logger *slog.Logger
}

func (h *SetPricingHandler) Handle(ctx context.Context, cmd SetPricingCommand) (*dto.HostPropertyDetail, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := prop.SetPricing(cmd.Payload.schedule(), time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host property pricing updated", "property_id", prop.ID, "host_id", cmd.HostID)
	}

	result := dto.MapHostPropertyDetail(prop)
	return &result, nil
}

type PublishHostPropertyCommand struct {
	HostID     string
	PropertyID string
}

func (c PublishHostPropertyCommand) Key() string { return publishHostPropertyKey }

type PublishHostPropertyHandler struct {
	Logger *slog.Logger
}

func (h *PublishHostPropertyHandler) Handle(ctx context.Context, cmd PublishHostPropertyCommand) (*dto.HostPropertyDetail, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := prop.Publish(time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host property published", "property_id", prop.ID, "host_id", cmd.HostID)
	}

	result := dto.MapHostPropertyDetail(prop)
	return &result, nil
}

type UnpublishHostPropertyCommand struct {
	HostID     string
	PropertyID string
}

func (c UnpublishHostPropertyCommand) Key() string { return unpublishHostPropertyKey }

type UnpublishHostPropertyHandler struct {
	Logger *slog.Logger
}

func (h *UnpublishHostPropertyHandler) Handle(ctx context.Context, cmd UnpublishHostPropertyCommand) (*dto.HostPropertyDetail, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := prop.Unpublish(time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host property unpublished", "property_id", prop.ID, "host_id", cmd.HostID)
	}

	result := dto.MapHostPropertyDetail(prop)
	return &result, nil
}

// loadOwned fetches the property inside the current unit of work and checks
// host ownership.
func loadOwned(ctx context.Context, hostID, propertyID string) (*domainproperty.Property, uow.UnitOfWork, error) {
	if strings.TrimSpace(hostID) == "" {
		return nil, nil, errors.New("host id is required")
	}
	if strings.TrimSpace(propertyID) == "" {
		return nil, nil, errors.New("property id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	prop, err := unit.Properties().ByID(ctx, domainproperty.ID(propertyID))
	if err != nil {
		return nil, nil, err
	}
	if prop.Host != domainproperty.HostID(hostID) {
		return nil, nil, ErrPropertyNotOwned
	}
	return prop, unit, nil
}

var (
	_ commands.Handler[CreateHostPropertyCommand, *dto.HostPropertyDetail]    = (*CreateHostPropertyHandler)(nil)
	_ commands.Handler[UpdateHostPropertyCommand, *dto.HostPropertyDetail]    = (*UpdateHostPropertyHandler)(nil)
	_ commands.Handler[SetPricingCommand, *dto.HostPropertyDetail]            = (*SetPricingHandler)(nil)
	_ commands.Handler[PublishHostPropertyCommand, *dto.HostPropertyDetail]   = (*PublishHostPropertyHandler)(nil)
	_ commands.Handler[UnpublishHostPropertyCommand, *dto.HostPropertyDetail] = (*UnpublishHostPropertyHandler)(nil)
)
