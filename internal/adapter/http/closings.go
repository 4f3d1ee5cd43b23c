package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/innledger/internal/domain"
)

type ClosePreviousMonthInput struct {
	Identity
}

// ClosingOutput reports 201 when this call closed the month and 200 when it
// was already closed.
type ClosingOutput struct {
	Status int
	Body   domain.MonthClosing
}

type ListClosingsInput struct {
	Identity
}

type ListClosingsOutput struct {
	Body []domain.MonthClosing
}

type MonthInput struct {
	Identity
	Month string `path:"month" pattern:"^[0-9]{4}-[0-9]{2}$" doc:"Month key (YYYY-MM)"`
}

type GetClosingOutput struct {
	Body domain.MonthClosing
}

type ReportInput struct {
	Identity
	From string `query:"from" required:"true" format:"date" doc:"First day (YYYY-MM-DD)"`
	To   string `query:"to" required:"true" format:"date" doc:"Last day (YYYY-MM-DD), inclusive"`
}

type ReportOutput struct {
	Body domain.TotalsSnapshot
}

func (h *handler) registerClosings(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "close-previous-month",
		Method:      http.MethodPost,
		Path:        "/api/v1/closings",
		Summary:     "Close the previous calendar month",
		Description: "Freezes the previous month's totals. Closing an already closed month returns the stored snapshot.",
		Tags:        []string{"Closings"},
	}, func(ctx context.Context, input *ClosePreviousMonthInput) (*ClosingOutput, error) {
		closing, created, err := h.svcs.Closings.ClosePreviousMonth(ctx, input.caller())
		if err != nil {
			return nil, toHumaError(err)
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		return &ClosingOutput{Status: status, Body: closing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-closings",
		Method:      http.MethodGet,
		Path:        "/api/v1/closings",
		Summary:     "List closed months, newest first",
		Tags:        []string{"Closings"},
	}, func(ctx context.Context, input *ListClosingsInput) (*ListClosingsOutput, error) {
		closings, err := h.svcs.Closings.ListClosings(ctx, input.caller())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListClosingsOutput{Body: closings}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-closing",
		Method:      http.MethodGet,
		Path:        "/api/v1/closings/{month}",
		Summary:     "Get the closing of a month",
		Tags:        []string{"Closings"},
	}, func(ctx context.Context, input *MonthInput) (*GetClosingOutput, error) {
		month, err := domain.ParseMonth(input.Month)
		if err != nil {
			return nil, toHumaError(err)
		}
		closing, err := h.svcs.Closings.GetClosing(ctx, input.caller(), month)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetClosingOutput{Body: closing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "reopen-month",
		Method:        http.MethodDelete,
		Path:          "/api/v1/closings/{month}",
		Summary:       "Reopen a closed month (admin)",
		Tags:          []string{"Closings"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *MonthInput) (*NoContentOutput, error) {
		month, err := domain.ParseMonth(input.Month)
		if err != nil {
			return nil, toHumaError(err)
		}
		if err := h.svcs.Closings.ReopenMonth(ctx, input.caller(), month); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/totals",
		Summary:     "Compute totals for a date range (admin)",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, input *ReportInput) (*ReportOutput, error) {
		from, to, err := dates(input.From, input.To)
		if err != nil {
			return nil, toHumaError(err)
		}
		totals, err := h.svcs.Closings.Report(ctx, input.caller(), from, to)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ReportOutput{Body: totals}, nil
	})
}
