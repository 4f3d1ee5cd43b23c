package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

type RegisterHotelInput struct {
	Body struct {
		Name          string `json:"name" minLength:"1" maxLength:"255" doc:"Hotel name"`
		Timezone      string `json:"timezone,omitempty" doc:"IANA timezone, UTC when empty"`
		OwnerFullName string `json:"owner_full_name" minLength:"1" doc:"Owner's full name"`
		OwnerUsername string `json:"owner_username" minLength:"1" doc:"Owner's login name"`
	}
}

type RegisterHotelOutput struct {
	Body struct {
		Hotel domain.Hotel   `json:"hotel"`
		Owner domain.Profile `json:"owner"`
	}
}

type GetHotelInput struct {
	Identity
}

type HotelOutput struct {
	Body domain.Hotel
}

type UpdateHotelInput struct {
	Identity
	Body struct {
		Name     *string `json:"name,omitempty" doc:"Hotel name"`
		Timezone *string `json:"timezone,omitempty" doc:"IANA timezone"`
	}
}

func (h *handler) registerHotel(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-hotel",
		Method:        http.MethodPost,
		Path:          "/api/v1/hotels",
		Summary:       "Register a hotel with its owner",
		Tags:          []string{"Hotel"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterHotelInput) (*RegisterHotelOutput, error) {
		hotel, owner, err := h.svcs.Hotels.RegisterHotel(ctx, app.RegisterHotelCommand{
			Name:          input.Body.Name,
			Timezone:      input.Body.Timezone,
			OwnerFullName: input.Body.OwnerFullName,
			OwnerUsername: input.Body.OwnerUsername,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &RegisterHotelOutput{}
		out.Body.Hotel = hotel
		out.Body.Owner = owner
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-hotel",
		Method:      http.MethodGet,
		Path:        "/api/v1/hotel",
		Summary:     "Get the caller's hotel settings",
		Tags:        []string{"Hotel"},
	}, func(ctx context.Context, input *GetHotelInput) (*HotelOutput, error) {
		hotel, err := h.svcs.Hotels.GetHotel(ctx, input.caller())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &HotelOutput{Body: hotel}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-hotel",
		Method:      http.MethodPatch,
		Path:        "/api/v1/hotel",
		Summary:     "Update the hotel name or timezone",
		Tags:        []string{"Hotel"},
	}, func(ctx context.Context, input *UpdateHotelInput) (*HotelOutput, error) {
		hotel, err := h.svcs.Hotels.UpdateHotel(ctx, input.caller(), input.Body.Name, input.Body.Timezone)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &HotelOutput{Body: hotel}, nil
	})
}
