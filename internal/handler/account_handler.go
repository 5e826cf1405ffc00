package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/heronbank/account-service/internal/cqrs"
	"github.com/heronbank/account-service/internal/middleware"
	"github.com/heronbank/account-service/internal/models"
)

// AccountCommander defines the write-side operations used by AccountHandler.
type AccountCommander interface {
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.Account, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
	Transfer(context.Context, cqrs.TransferCommand) (*models.Account, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.AccountView, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.AccountView, error)
}

// AccountHandler handles account-related HTTP requests. It owns the
// boundary checks (request validation, path-id vs body-id agreement) and
// the mapping from typed domain failures to HTTP statuses.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

// Treasury is a pointer so an absent flag is distinguishable from false.
type CreateAccountRequest struct {
	Name     string          `json:"name" validate:"required"`
	Currency string          `json:"currency" validate:"required"`
	Balance  decimal.Decimal `json:"balance"`
	Treasury *bool           `json:"treasury" validate:"required"`
}

type UpdateAccountRequest struct {
	ID       int64           `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Currency string          `json:"currency" validate:"required"`
	Balance  decimal.Decimal `json:"balance"`
	Treasury *bool           `json:"treasury" validate:"required"`
}

type TransferRequest struct {
	Origin           int64           `json:"origin" validate:"required"`
	Payee            int64           `json:"payee" validate:"required"`
	AmountToTransfer decimal.Decimal `json:"amountToTransfer"`
}

type ListAccountsResponse struct {
	Accounts []models.AccountView `json:"accounts"`
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		Name:     req.Name,
		Currency: req.Currency,
		Balance:  req.Balance,
		Treasury: *req.Treasury,
	})
	if err != nil {
		respondWithServiceError(c, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	views, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{})
	if err != nil {
		respondWithServiceError(c, err, "Failed to list accounts")
		return
	}
	if views == nil {
		views = []models.AccountView{}
	}
	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: views})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{AccountID: id})
	if err != nil {
		respondWithServiceError(c, err, "Failed to get account")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if req.ID != id {
		middleware.RespondWithError(c, http.StatusBadRequest, "Account id in path does not match account id in body")
		return
	}

	account, err := h.commands.UpdateAccount(c.Request.Context(), cqrs.UpdateAccountCommand{
		AccountID: id,
		Name:      req.Name,
		Currency:  req.Currency,
		Balance:   req.Balance,
		Treasury:  *req.Treasury,
	})
	if err != nil {
		respondWithServiceError(c, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commands.DeleteAccount(c.Request.Context(), cqrs.DeleteAccountCommand{AccountID: id}); err != nil {
		respondWithServiceError(c, err, "Failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}

// Transfer is mounted at POST /:id/payee/:payeeId; the :id segment is the
// origin account (gin requires one wildcard name per position).
func (h *AccountHandler) Transfer(c *gin.Context) {
	originID, ok := pathID(c, "id")
	if !ok {
		return
	}
	payeeID, ok := pathID(c, "payeeId")
	if !ok {
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	if req.Origin != originID {
		middleware.RespondWithError(c, http.StatusBadRequest, "Origin account id in path does not match origin account id in body")
		return
	}
	if req.Payee != payeeID {
		middleware.RespondWithError(c, http.StatusBadRequest, "Payee account id in path does not match payee account id in body")
		return
	}

	origin, err := h.commands.Transfer(c.Request.Context(), cqrs.TransferCommand{
		Origin: req.Origin,
		Payee:  req.Payee,
		Amount: req.AmountToTransfer,
	})
	if err != nil {
		respondWithServiceError(c, err, "Failed to transfer")
		return
	}

	c.JSON(http.StatusOK, origin)
}

// pathID parses a numeric id path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account id")
		return 0, false
	}
	return id, true
}

// respondWithServiceError maps typed domain failures to HTTP statuses:
// missing account -> 404, policy violation -> 400, anything else -> 500.
func respondWithServiceError(c *gin.Context, err error, fallback string) {
	var policyErr *models.PolicyViolationError
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
	case errors.As(err, &policyErr):
		middleware.RespondWithError(c, http.StatusBadRequest, policyErr.Reason)
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
