package properties

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staynest/internal/app/commands"
	"staynest/internal/app/dto"
	domainproperty "staynest/internal/domain/property"
	domainrange "staynest/internal/domain/shared/daterange"
)

const (
	addAvailabilityKey    = "host.calendar.availability.add"
	removeAvailabilityKey = "host.calendar.availability.remove"
	blockDatesKey         = "host.calendar.block"
	unblockDatesKey       = "host.calendar.unblock"
)

type AddAvailabilityCommand struct {
	HostID     string
	PropertyID string
	StartDate  time.Time
	EndDate    time.Time
}

func (c AddAvailabilityCommand) Key() string { return addAvailabilityKey }

type AddAvailabilityHandler struct {
	Logger *slog.Logger
}

func (h *AddAvailabilityHandler) Handle(ctx context.Context, cmd AddAvailabilityCommand) (*dto.Calendar, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := prop.AddAvailability(cmd.StartDate, cmd.EndDate, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("availability added", "property_id", prop.ID, "start", cmd.StartDate, "end", cmd.EndDate)
	}

	calendar := dto.MapCalendar(prop)
	return &calendar, nil
}

type RemoveAvailabilityCommand struct {
	HostID     string
	PropertyID string
	StartDate  time.Time
	EndDate    time.Time
}

func (c RemoveAvailabilityCommand) Key() string { return removeAvailabilityKey }

type RemoveAvailabilityHandler struct {
	Logger *slog.Logger
}

func (h *RemoveAvailabilityHandler) Handle(ctx context.Context, cmd RemoveAvailabilityCommand) (*dto.Calendar, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := prop.RemoveAvailability(cmd.StartDate, cmd.EndDate, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("availability removed", "property_id", prop.ID, "start", cmd.StartDate, "end", cmd.EndDate)
	}

	calendar := dto.MapCalendar(prop)
	return &calendar, nil
}

// BlockDatesCommand marks [From, To) unavailable for host reasons such as
// maintenance or personal use. Booking-created blocks do not pass through
// here.
type BlockDatesCommand struct {
	HostID     string
	PropertyID string
	From       time.Time
	To         time.Time
	Reason     string
}

func (c BlockDatesCommand) Key() string { return blockDatesKey }

type BlockDatesHandler struct {
	Logger *slog.Logger
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (*dto.Calendar, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	dr, err := domainrange.New(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	reason := domainproperty.BlockReason(cmd.Reason)
	switch reason {
	case domainproperty.ReasonHostBlock, domainproperty.ReasonUpkeep:
	default:
		reason = domainproperty.ReasonHostBlock
	}
	reference := "host-" + uuid.NewString()

	if err := prop.Block(dr, reason, reference, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("dates blocked", "property_id", prop.ID, "from", dr.CheckIn, "to", dr.CheckOut, "reason", reason)
	}

	calendar := dto.MapCalendar(prop)
	return &calendar, nil
}

type UnblockDatesCommand struct {
	HostID     string
	PropertyID string
	From       time.Time
	To         time.Time
}

func (c UnblockDatesCommand) Key() string { return unblockDatesKey }

type UnblockDatesHandler struct {
	Logger *slog.Logger
}

func (h *UnblockDatesHandler) Handle(ctx context.Context, cmd UnblockDatesCommand) (*dto.Calendar, error) {
	prop, unit, err := loadOwned(ctx, cmd.HostID, cmd.PropertyID)
	if err != nil {
		return nil, err
	}

	dr, err := domainrange.New(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	if err := prop.UnblockRange(dr, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("dates unblocked", "property_id", prop.ID, "from", dr.CheckIn, "to", dr.CheckOut)
	}

	calendar := dto.MapCalendar(prop)
	return &calendar, nil
}

var (
	_ commands.Handler[AddAvailabilityCommand, *dto.Calendar]    = (*AddAvailabilityHandler)(nil)
	_ commands.Handler[RemoveAvailabilityCommand, *dto.Calendar] = (*RemoveAvailabilityHandler)(nil)
	_ commands.Handler[BlockDatesCommand, *dto.Calendar]         = (*BlockDatesHandler)(nil)
	_ commands.Handler[UnblockDatesCommand, *dto.Calendar]       = (*UnblockDatesHandler)(nil)
)
