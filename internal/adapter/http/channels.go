package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/innledger/internal/domain"
)

type ListChannelsInput struct {
	Identity
}

type ListChannelsOutput struct {
	Body []domain.CustomChannel
}

type CreateChannelInput struct {
	Identity
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"64" doc:"Channel name, unique per hotel"`
	}
}

type ChannelOutput struct {
	Body domain.CustomChannel
}

type ChannelInput struct {
	Identity
	ID string `path:"id" doc:"Channel ID"`
}

func (h *handler) registerChannels(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-channels",
		Method:      http.MethodGet,
		Path:        "/api/v1/channels",
		Summary:     "List custom payment channels",
		Tags:        []string{"Channels"},
	}, func(ctx context.Context, input *ListChannelsInput) (*ListChannelsOutput, error) {
		channels, err := h.svcs.Channels.ListChannels(ctx, input.caller())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListChannelsOutput{Body: channels}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-channel",
		Method:        http.MethodPost,
		Path:          "/api/v1/channels",
		Summary:       "Add a custom payment channel (admin)",
		Tags:          []string{"Channels"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateChannelInput) (*ChannelOutput, error) {
		c, err := h.svcs.Channels.CreateChannel(ctx, input.caller(), input.Body.Name)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ChannelOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-channel",
		Method:        http.MethodDelete,
		Path:          "/api/v1/channels/{id}",
		Summary:       "Delete a custom payment channel (admin)",
		Tags:          []string{"Channels"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ChannelInput) (*NoContentOutput, error) {
		if err := h.svcs.Channels.DeleteChannel(ctx, input.caller(), input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})
}
