package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

// RecordInput addresses one payment, expense or transfer.
type RecordInput struct {
	Identity
	ID string `path:"id" doc:"Record ID"`
}

// RangeInput filters a ledger list by an inclusive date range in the
// hotel's timezone.
type RangeInput struct {
	Identity
	From string `query:"from" required:"false" format:"date" doc:"First day (YYYY-MM-DD)"`
	To   string `query:"to" required:"false" format:"date" doc:"Last day (YYYY-MM-DD), inclusive"`
}

// --- Payments ---

type CreatePaymentInput struct {
	Identity
	Body struct {
		StayID  string      `json:"stay_id" minLength:"1" doc:"Stay the payment settles"`
		PaidAt  *time.Time  `json:"paid_at,omitempty" doc:"Payment time, now when omitted"`
		Channel ChannelBody `json:"channel"`
		Amount  string      `json:"amount" doc:"Amount, negative for refunds"`
		Comment string      `json:"comment,omitempty"`
	}
}

type UpdatePaymentInput struct {
	Identity
	ID   string `path:"id" doc:"Payment ID"`
	Body struct {
		PaidAt  *time.Time   `json:"paid_at,omitempty"`
		Channel *ChannelBody `json:"channel,omitempty"`
		Amount  *string      `json:"amount,omitempty"`
		Comment *string      `json:"comment,omitempty"`
	}
}

type PaymentOutput struct {
	Body domain.Payment
}

type ListPaymentsOutput struct {
	Body []domain.Payment
}

func (h *handler) registerPayments(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-payment",
		Method:        http.MethodPost,
		Path:          "/api/v1/payments",
		Summary:       "Record a payment for a stay",
		Tags:          []string{"Payments"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreatePaymentInput) (*PaymentOutput, error) {
		amount, err := parseAmount("amount", input.Body.Amount)
		if err != nil {
			return nil, toHumaError(err)
		}
		p, err := h.svcs.Ledger.CreatePayment(ctx, input.caller(), app.CreatePaymentCommand{
			StayID:  input.Body.StayID,
			PaidAt:  orZero(input.Body.PaidAt),
			Channel: input.Body.Channel.channel(),
			Amount:  amount,
			Comment: input.Body.Comment,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PaymentOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-payments",
		Method:      http.MethodGet,
		Path:        "/api/v1/payments",
		Summary:     "List payments",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *RangeInput) (*ListPaymentsOutput, error) {
		r, err := h.window(ctx, input.caller(), input.From, input.To)
		if err != nil {
			return nil, toHumaError(err)
		}
		payments, err := h.svcs.Ledger.ListPayments(ctx, input.caller(), r)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListPaymentsOutput{Body: payments}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-payment",
		Method:      http.MethodGet,
		Path:        "/api/v1/payments/{id}",
		Summary:     "Get a payment by ID",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *RecordInput) (*PaymentOutput, error) {
		p, err := h.svcs.Ledger.GetPayment(ctx, input.caller(), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PaymentOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-payment",
		Method:      http.MethodPatch,
		Path:        "/api/v1/payments/{id}",
		Summary:     "Update a payment",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *UpdatePaymentInput) (*PaymentOutput, error) {
		amount, err := parseAmountPtr("amount", input.Body.Amount)
		if err != nil {
			return nil, toHumaError(err)
		}
		p, err := h.svcs.Ledger.UpdatePayment(ctx, input.caller(), input.ID, app.PaymentPatch{
			PaidAt:  input.Body.PaidAt,
			Channel: input.Body.Channel.channelPtr(),
			Amount:  amount,
			Comment: input.Body.Comment,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PaymentOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-payment",
		Method:        http.MethodDelete,
		Path:          "/api/v1/payments/{id}",
		Summary:       "Delete a payment",
		Tags:          []string{"Payments"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RecordInput) (*NoContentOutput, error) {
		if err := h.svcs.Ledger.DeletePayment(ctx, input.caller(), input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})
}

// --- Expenses ---

type CreateExpenseInput struct {
	Identity
	Body struct {
		SpentAt  *time.Time  `json:"spent_at,omitempty" doc:"Expense time, now when omitted"`
		Category string      `json:"category,omitempty" enum:"SALARY,UTILITIES,FOOD,REPAIR,CLEANING,OTHER" doc:"OTHER when empty"`
		Channel  ChannelBody `json:"channel"`
		Amount   string      `json:"amount" doc:"Amount spent"`
		Comment  string      `json:"comment,omitempty"`
	}
}

type UpdateExpenseInput struct {
	Identity
	ID   string `path:"id" doc:"Expense ID"`
	Body struct {
		SpentAt  *time.Time   `json:"spent_at,omitempty"`
		Category *string      `json:"category,omitempty" enum:"SALARY,UTILITIES,FOOD,REPAIR,CLEANING,OTHER"`
		Channel  *ChannelBody `json:"channel,omitempty"`
		Amount   *string      `json:"amount,omitempty"`
		Comment  *string      `json:"comment,omitempty"`
	}
}

type ExpenseOutput struct {
	Body domain.Expense
}

type ListExpensesOutput struct {
	Body []domain.Expense
}

func (h *handler) registerExpenses(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-expense",
		Method:        http.MethodPost,
		Path:          "/api/v1/expenses",
		Summary:       "Record an expense",
		Tags:          []string{"Expenses"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateExpenseInput) (*ExpenseOutput, error) {
		amount, err := parseAmount("amount", input.Body.Amount)
		if err != nil {
			return nil, toHumaError(err)
		}
		e, err := h.svcs.Ledger.CreateExpense(ctx, input.caller(), app.CreateExpenseCommand{
			SpentAt:  orZero(input.Body.SpentAt),
			Category: domain.ExpenseCategory(input.Body.Category),
			Channel:  input.Body.Channel.channel(),
			Amount:   amount,
			Comment:  input.Body.Comment,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExpenseOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-expenses",
		Method:      http.MethodGet,
		Path:        "/api/v1/expenses",
		Summary:     "List expenses; managers see their own",
		Tags:        []string{"Expenses"},
	}, func(ctx context.Context, input *RangeInput) (*ListExpensesOutput, error) {
		r, err := h.window(ctx, input.caller(), input.From, input.To)
		if err != nil {
			return nil, toHumaError(err)
		}
		expenses, err := h.svcs.Ledger.ListExpenses(ctx, input.caller(), r)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListExpensesOutput{Body: expenses}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-expense",
		Method:      http.MethodGet,
		Path:        "/api/v1/expenses/{id}",
		Summary:     "Get an expense by ID",
		Tags:        []string{"Expenses"},
	}, func(ctx context.Context, input *RecordInput) (*ExpenseOutput, error) {
		e, err := h.svcs.Ledger.GetExpense(ctx, input.caller(), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExpenseOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-expense",
		Method:      http.MethodPatch,
		Path:        "/api/v1/expenses/{id}",
		Summary:     "Update an expense",
		Tags:        []string{"Expenses"},
	}, func(ctx context.Context, input *UpdateExpenseInput) (*ExpenseOutput, error) {
		amount, err := parseAmountPtr("amount", input.Body.Amount)
		if err != nil {
			return nil, toHumaError(err)
		}
		patch := app.ExpensePatch{
			SpentAt: input.Body.SpentAt,
			Channel: input.Body.Channel.channelPtr(),
			Amount:  amount,
			Comment: input.Body.Comment,
		}
		if input.Body.Category != nil {
			c := domain.ExpenseCategory(*input.Body.Category)
			patch.Category = &c
		}
		e, err := h.svcs.Ledger.UpdateExpense(ctx, input.caller(), input.ID, patch)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExpenseOutput{Body: e}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-expense",
		Method:        http.MethodDelete,
		Path:          "/api/v1/expenses/{id}",
		Summary:       "Delete an expense",
		Tags:          []string{"Expenses"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RecordInput) (*NoContentOutput, error) {
		if err := h.svcs.Ledger.DeleteExpense(ctx, input.caller(), input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})
}

// --- Transfers ---

type CreateTransferInput struct {
	Identity
	Body struct {
		TransferredAt *time.Time  `json:"transferred_at,omitempty" doc:"Transfer time, now when omitted"`
		From          ChannelBody `json:"from"`
		To            ChannelBody `json:"to"`
		Amount        string      `json:"amount" doc:"Positive amount moved"`
		Comment       string      `json:"comment,omitempty"`
	}
}

type UpdateTransferInput struct {
	Identity
	ID   string `path:"id" doc:"Transfer ID"`
	Body struct {
		TransferredAt *time.Time   `json:"transferred_at,omitempty"`
		From          *ChannelBody `json:"from,omitempty"`
		To            *ChannelBody `json:"to,omitempty"`
		Amount        *string      `json:"amount,omitempty"`
		Comment       *string      `json:"comment,omitempty"`
	}
}

type TransferOutput struct {
	Body domain.Transfer
}

type ListTransfersOutput struct {
	Body []domain.Transfer
}

func (h *handler) registerTransfers(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transfer",
		Method:        http.MethodPost,
		Path:          "/api/v1/transfers",
		Summary:       "Move funds between registers",
		Tags:          []string{"Transfers"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTransferInput) (*TransferOutput, error) {
		amount, err := parseAmount("amount", input.Body.Amount)
		if err != nil {
			return nil, toHumaError(err)
		}
		tr, err := h.svcs.Ledger.CreateTransfer(ctx, input.caller(), app.CreateTransferCommand{
			TransferredAt: orZero(input.Body.TransferredAt),
			From:          input.Body.From.channel(),
			To:            input.Body.To.channel(),
			Amount:        amount,
			Comment:       input.Body.Comment,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: tr}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transfers",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers",
		Summary:     "List transfers",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *RangeInput) (*ListTransfersOutput, error) {
		r, err := h.window(ctx, input.caller(), input.From, input.To)
		if err != nil {
			return nil, toHumaError(err)
		}
		transfers, err := h.svcs.Ledger.ListTransfers(ctx, input.caller(), r)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListTransfersOutput{Body: transfers}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transfer",
		Method:      http.MethodGet,
		Path:        "/api/v1/transfers/{id}",
		Summary:     "Get a transfer by ID",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *RecordInput) (*TransferOutput, error) {
		tr, err := h.svcs.Ledger.GetTransfer(ctx, input.caller(), input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: tr}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-transfer",
		Method:      http.MethodPatch,
		Path:        "/api/v1/transfers/{id}",
		Summary:     "Update a transfer",
		Tags:        []string{"Transfers"},
	}, func(ctx context.Context, input *UpdateTransferInput) (*TransferOutput, error) {
		amount, err := parseAmountPtr("amount", input.Body.Amount)
		if err != nil {
			return nil, toHumaError(err)
		}
		tr, err := h.svcs.Ledger.UpdateTransfer(ctx, input.caller(), input.ID, app.TransferPatch{
			TransferredAt: input.Body.TransferredAt,
			From:          input.Body.From.channelPtr(),
			To:            input.Body.To.channelPtr(),
			Amount:        amount,
			Comment:       input.Body.Comment,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransferOutput{Body: tr}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-transfer",
		Method:        http.MethodDelete,
		Path:          "/api/v1/transfers/{id}",
		Summary:       "Delete a transfer",
		Tags:          []string{"Transfers"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RecordInput) (*NoContentOutput, error) {
		if err := h.svcs.Ledger.DeleteTransfer(ctx, input.caller(), input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &NoContentOutput{}, nil
	})
}

func orZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
