package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

// Identity carries the caller headers set by the upstream identity provider.
// They are trusted as-is.
type Identity struct {
	HotelID string `header:"X-Hotel-ID" doc:"Hotel (tenant) of the caller"`
	UserID  string `header:"X-User-ID" doc:"Profile ID of the caller"`
	Role    string `header:"X-Role" doc:"ADMIN or MANAGER"`
}

func (i Identity) caller() domain.Caller {
	return domain.Caller{
		TenantID: i.HotelID,
		UserID:   i.UserID,
		Role:     domain.Role(strings.ToUpper(i.Role)),
	}
}

// ChannelBody is the wire form of a payment channel: a fixed method or a
// custom label.
type ChannelBody struct {
	Method string `json:"method,omitempty" doc:"CASH, CARD, TRANSFER or OTHER"`
	Custom string `json:"custom,omitempty" doc:"Hotel-defined channel name"`
}

func (c ChannelBody) channel() domain.Channel {
	return domain.ChannelFromParts(strings.ToUpper(c.Method), c.Custom)
}

func (c *ChannelBody) channelPtr() *domain.Channel {
	if c == nil {
		return nil
	}
	ch := c.channel()
	return &ch
}

// NoContentOutput is returned by deletes.
type NoContentOutput struct{}

// Register adds every ledger route to the Huma API.
func Register(api huma.API, svcs *app.Services) {
	h := &handler{svcs: svcs}
	h.registerHotel(api)
	h.registerRooms(api)
	h.registerStays(api)
	h.registerPayments(api)
	h.registerExpenses(api)
	h.registerTransfers(api)
	h.registerClosings(api)
	h.registerUsers(api)
	h.registerChannels(api)
}

type handler struct {
	svcs *app.Services
}

// window resolves an inclusive date filter into an instant range in the
// hotel's timezone. Both bounds empty means no filter.
func (h *handler) window(ctx context.Context, caller domain.Caller, from, to string) (domain.TimeRange, error) {
	if from == "" && to == "" {
		return domain.TimeRange{}, nil
	}
	if from == "" || to == "" {
		return domain.TimeRange{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "from and to must be given together"}
	}
	start, end, err := dates(from, to)
	if err != nil {
		return domain.TimeRange{}, err
	}
	loc := time.UTC
	hotel, err := h.svcs.Hotels.GetHotel(ctx, caller)
	switch {
	case err == nil:
		loc = hotel.Location()
	case !errors.Is(err, domain.ErrNotFound):
		return domain.TimeRange{}, err
	}
	return domain.DayWindow(start, end, loc), nil
}

func dates(from, to string) (time.Time, time.Time, error) {
	start, err := domain.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseAmount reads a decimal string. An empty string is zero.
func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: field + " must be a decimal number"}
	}
	return d, nil
}

func parseAmountPtr(field string, s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseAmount(field, *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrRoomOccupied),
		errors.Is(err, domain.ErrActiveStay),
		errors.Is(err, domain.ErrHasPayments),
		errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrPeriodClosed),
		errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, domain.ErrInvalidInterval),
		errors.Is(err, domain.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(err.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error409Conflict(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
