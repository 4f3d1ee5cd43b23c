package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

type RoomInput struct {
	Identity
	ID string `path:"id" doc:"Room ID"`
}

type ListRoomsInput struct {
	Identity
}

type CreateRoomInput struct {
	Identity
	Body struct {
		Number    string `json:"number" minLength:"1" maxLength:"32" doc:"Room number shown to guests"`
		Floor     int    `json:"floor,omitempty" doc:"Floor"`
		Type      string `json:"room_type,omitempty" enum:"SINGLE,DOUBLE,SUITE,FAMILY" doc:"Room type, DOUBLE when empty"`
		Capacity  int    `json:"capacity,omitempty" doc:"Number of guests"`
		BasePrice string `json:"base_price,omitempty" doc:"Default nightly price"`
		Active    *bool  `json:"active,omitempty" doc:"Whether the room is sellable, true when omitted"`
		Notes     string `json:"notes,omitempty"`
	}
}

type UpdateRoomInput struct {
	Identity
	ID   string `path:"id" doc:"Room ID"`
	Body struct {
		Number    *string `json:"number,omitempty"`
		Floor     *int    `json:"floor,omitempty"`
		Type      *string `json:"room_type,omitempty" enum:"SINGLE,DOUBLE,SUITE,FAMILY"`
		Capacity  *int    `json:"capacity,omitempty"`
		BasePrice *string `json:"base_price,omitempty"`
		Active    *bool   `json:"active,omitempty"`
		Notes     *string `json:"notes,omitempty"`
	}
}

type RoomOutput struct {
	Body domain.Room
}

type ListRoomsOutput struct {
	Body []domain.Room
}

func (h *handler) registerRooms(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-room",
		Method:        http.MethodPost,
		Path:          "/api/v1/rooms",
		Summary:       "Create a room",
		Tags:          []string{"Rooms"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateRoomInput) (*RoomOutput, error) {
		price, err := parseAmount("base_price", input.Body.BasePrice)
		if err != nil {
			return nil, toHumaError(err)
		}
		active := true
		if input.Body.Active != nil {
			active = *input.Body.Active
		}
		room, err := h.svcs.Rooms.CreateRoom(ctx, input.caller(), app.CreateRoomCommand{
			Number:    input.Body.Number,
			Floor:     input.Body.Floor,
			Type:      domain.RoomType(input.Body.Type),
			Capacity:  input.Body.Capacity,
			BasePrice: price,
			Active:    active,
			Notes:     input.Body.Notes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: room}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-rooms",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms",
		Summary:     "List rooms by floor and number",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
		rooms, err := h.svcs.Rooms.ListRooms(ctx, input.caller())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListRoomsOutput{Body: rooms}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-room",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms/{id}",
		Summary:     "Get a room by ID",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *RoomInput) (*RoomOutput, error) {
		room, err := h.svcs.Rooms.GetRoom(ctx, input.caller(), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: room}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-room",
		Method:      http.MethodPatch,
		Path:        "/api/v1/rooms/{id}",
		Summary:     "Update a room",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *UpdateRoomInput) (*RoomOutput, error) {
		price, err := parseAmountPtr("base_price", input.Body.BasePrice)
		if err != nil {
			return nil, toHumaError(err)
		}
		patch := app.RoomPatch{
			Number:    input.Body.Number,
			Floor:     input.Body.Floor,
			Capacity:  input.Body.Capacity,
			BasePrice: price,
			Active:    input.Body.Active,
			Notes:     input.Body.Notes,
		}
		if input.Body.Type != nil {
			t := domain.RoomType(*input.Body.Type)
			patch.Type = &t
		}
		room, err := h.svcs.Rooms.UpdateRoom(ctx, input.caller(), input.ID, patch)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: room}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-room",
		Method:        http.MethodDelete,
		Path:          "/api/v1/rooms/{id}",
		Summary:       "Delete a room without stays",
		Tags:          []string{"Rooms"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RoomInput) (*NoContentOutput, error) {
		if err := h.svcs.Rooms.DeleteRoom(ctx, input.caller(), input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})
}
