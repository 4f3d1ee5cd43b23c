package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

type StayInput struct {
	Identity
	ID string `path:"id" doc:"Stay ID"`
}

type ListStaysInput struct {
	Identity
	RoomID string `query:"room_id" required:"false" doc:"Only stays of this room"`
}

type CreateStayInput struct {
	Identity
	Body struct {
		RoomID           string `json:"room_id" minLength:"1" doc:"Room ID"`
		GuestName        string `json:"guest_name" minLength:"1" doc:"Guest name"`
		GuestPhone       string `json:"guest_phone,omitempty"`
		CheckIn          string `json:"check_in_date" format:"date" doc:"First night (YYYY-MM-DD)"`
		CheckOut         string `json:"check_out_date" format:"date" doc:"Departure day (YYYY-MM-DD), exclusive"`
		Status           string `json:"status,omitempty" enum:"BOOKED,CHECKED_IN,CHECKED_OUT,CANCELLED" doc:"BOOKED when empty"`
		PricePerNight    string `json:"price_per_night,omitempty"`
		WeeklyDiscount   string `json:"weekly_discount_amount,omitempty"`
		ManualAdjustment string `json:"manual_adjustment_amount,omitempty"`
		DepositExpected  string `json:"deposit_expected,omitempty"`
		Comment          string `json:"comment,omitempty"`
	}
}

type UpdateStayInput struct {
	Identity
	ID   string `path:"id" doc:"Stay ID"`
	Body struct {
		RoomID           *string `json:"room_id,omitempty"`
		GuestName        *string `json:"guest_name,omitempty"`
		GuestPhone       *string `json:"guest_phone,omitempty"`
		CheckIn          *string `json:"check_in_date,omitempty" format:"date"`
		CheckOut         *string `json:"check_out_date,omitempty" format:"date"`
		Status           *string `json:"status,omitempty" enum:"BOOKED,CHECKED_IN,CHECKED_OUT,CANCELLED"`
		PricePerNight    *string `json:"price_per_night,omitempty"`
		WeeklyDiscount   *string `json:"weekly_discount_amount,omitempty"`
		ManualAdjustment *string `json:"manual_adjustment_amount,omitempty"`
		DepositExpected  *string `json:"deposit_expected,omitempty"`
		Comment          *string `json:"comment,omitempty"`
	}
}

type StayOutput struct {
	Body domain.Stay
}

type ListStaysOutput struct {
	Body []domain.Stay
}

func (h *handler) registerStays(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-stay",
		Method:        http.MethodPost,
		Path:          "/api/v1/stays",
		Summary:       "Book a room",
		Tags:          []string{"Stays"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateStayInput) (*StayOutput, error) {
		cmd, err := createStayCommand(input)
		if err != nil {
			return nil, toHumaError(err)
		}
		stay, err := h.svcs.Bookings.CreateStay(ctx, input.caller(), cmd)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: stay}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-stays",
		Method:      http.MethodGet,
		Path:        "/api/v1/stays",
		Summary:     "List stays, newest check-in first",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *ListStaysInput) (*ListStaysOutput, error) {
		stays, err := h.svcs.Bookings.ListStays(ctx, input.caller(), input.RoomID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListStaysOutput{Body: stays}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-stay",
		Method:      http.MethodGet,
		Path:        "/api/v1/stays/{id}",
		Summary:     "Get a stay by ID",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *StayInput) (*StayOutput, error) {
		stay, err := h.svcs.Bookings.GetStay(ctx, input.caller(), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: stay}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-stay",
		Method:      http.MethodPatch,
		Path:        "/api/v1/stays/{id}",
		Summary:     "Change dates, room, status or prices of a stay",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *UpdateStayInput) (*StayOutput, error) {
		patch, err := stayPatch(input)
		if err != nil {
			return nil, toHumaError(err)
		}
		stay, err := h.svcs.Bookings.UpdateStay(ctx, input.caller(), input.ID, patch)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: stay}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-stay",
		Method:        http.MethodDelete,
		Path:          "/api/v1/stays/{id}",
		Summary:       "Delete a stay without payments",
		Tags:          []string{"Stays"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *StayInput) (*NoContentOutput, error) {
		if err := h.svcs.Bookings.DeleteStay(ctx, input.caller(), input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})
}

func createStayCommand(input *CreateStayInput) (app.CreateStayCommand, error) {
	b := input.Body
	checkIn, checkOut, err := dates(b.CheckIn, b.CheckOut)
	if err != nil {
		return app.CreateStayCommand{}, err
	}
	cmd := app.CreateStayCommand{
		RoomID:     b.RoomID,
		GuestName:  b.GuestName,
		GuestPhone: b.GuestPhone,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     domain.StayStatus(b.Status),
		Comment:    b.Comment,
	}
	if cmd.PricePerNight, err = parseAmount("price_per_night", b.PricePerNight); err != nil {
		return app.CreateStayCommand{}, err
	}
	if cmd.WeeklyDiscount, err = parseAmount("weekly_discount_amount", b.WeeklyDiscount); err != nil {
		return app.CreateStayCommand{}, err
	}
	if cmd.ManualAdjustment, err = parseAmount("manual_adjustment_amount", b.ManualAdjustment); err != nil {
		return app.CreateStayCommand{}, err
	}
	if cmd.DepositExpected, err = parseAmount("deposit_expected", b.DepositExpected); err != nil {
		return app.CreateStayCommand{}, err
	}
	return cmd, nil
}

func stayPatch(input *UpdateStayInput) (app.StayPatch, error) {
	b := input.Body
	patch := app.StayPatch{
		RoomID:     b.RoomID,
		GuestName:  b.GuestName,
		GuestPhone: b.GuestPhone,
		Comment:    b.Comment,
	}
	var err error
	if patch.CheckIn, err = parseDatePtr(b.CheckIn); err != nil {
		return app.StayPatch{}, err
	}
	if patch.CheckOut, err = parseDatePtr(b.CheckOut); err != nil {
		return app.StayPatch{}, err
	}
	if b.Status != nil {
		s := domain.StayStatus(*b.Status)
		patch.Status = &s
	}
	if patch.PricePerNight, err = parseAmountPtr("price_per_night", b.PricePerNight); err != nil {
		return app.StayPatch{}, err
	}
	if patch.WeeklyDiscount, err = parseAmountPtr("weekly_discount_amount", b.WeeklyDiscount); err != nil {
		return app.StayPatch{}, err
	}
	if patch.ManualAdjustment, err = parseAmountPtr("manual_adjustment_amount", b.ManualAdjustment); err != nil {
		return app.StayPatch{}, err
	}
	if patch.DepositExpected, err = parseAmountPtr("deposit_expected", b.DepositExpected); err != nil {
		return app.StayPatch{}, err
	}
	return patch, nil
}
