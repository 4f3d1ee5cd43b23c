package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

type ListUsersInput struct {
	Identity
}

type ListUsersOutput struct {
	Body []app.UserView
}

type CreateUserInput struct {
	Identity
	Body struct {
		FullName string `json:"full_name" minLength:"1" doc:"Full name"`
		Username string `json:"username" minLength:"1" doc:"Login name, stored lowercase"`
		Role     string `json:"role,omitempty" enum:"ADMIN,MANAGER" doc:"MANAGER when empty"`
	}
}

type ChangeRoleInput struct {
	Identity
	ID   string `path:"id" doc:"Profile ID"`
	Body struct {
		Role string `json:"role" doc:"ADMIN or MANAGER"`
	}
}

type UserInput struct {
	Identity
	ID string `path:"id" doc:"Profile ID"`
}

type ProfileOutput struct {
	Body domain.Profile
}

func (h *handler) registerUsers(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List hotel users (admin)",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
		users, err := h.svcs.Users.ListUsers(ctx, input.caller())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListUsersOutput{Body: users}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Add a hotel user (admin)",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateUserInput) (*ProfileOutput, error) {
		p, err := h.svcs.Users.CreateUser(ctx, input.caller(), app.CreateUserCommand{
			FullName: input.Body.FullName,
			Username: input.Body.Username,
			Role:     domain.Role(input.Body.Role),
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProfileOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-role",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{id}/role",
		Summary:     "Change a user's role (admin)",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ChangeRoleInput) (*ProfileOutput, error) {
		role := domain.Role(strings.ToUpper(input.Body.Role))
		p, err := h.svcs.Users.ChangeRole(ctx, input.caller(), input.ID, role)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ProfileOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-user",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{id}",
		Summary:       "Delete a user (admin)",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *UserInput) (*NoContentOutput, error) {
		if err := h.svcs.Users.DeleteUser(ctx, input.caller(), input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})
}
