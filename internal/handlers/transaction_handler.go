package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
	"juntos/internal/pagination"
	"juntos/internal/services"
	"juntos/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Description  string                 `json:"description" binding:"required,min=1,max=255"`
	Amount       decimal.Decimal        `json:"amount" binding:"required,gt=0" swaggertype:"number"`
	Type         models.TransactionType `json:"type" binding:"required,transaction_type"`
	Date         string                 `json:"date" binding:"required" example:"2026-03-15"`
	IsPaid       bool                   `json:"is_paid"`
	CategoryID   string                 `json:"category_id" binding:"required,uuid"`
	AccountID    *string                `json:"account_id" binding:"omitempty,uuid"`
	CreditCardID *string                `json:"credit_card_id" binding:"omitempty,uuid"`
	GoalID       *string                `json:"goal_id" binding:"omitempty,uuid"`
}

// UpdateTransactionRequest represents a partial update. Sending null for
// account_id, credit_card_id or goal_id removes the link.
type UpdateTransactionRequest struct {
	Description  *string                 `json:"description" binding:"omitempty,min=1,max=255"`
	Amount       *decimal.Decimal        `json:"amount" binding:"omitempty,gt=0" swaggertype:"number"`
	Type         *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Date         *string                 `json:"date"`
	IsPaid       *bool                   `json:"is_paid"`
	CategoryID   *string                 `json:"category_id" binding:"omitempty,uuid"`
	AccountID    nullableID              `json:"account_id" swaggertype:"string"`
	CreditCardID nullableID              `json:"credit_card_id" swaggertype:"string"`
	GoalID       nullableID              `json:"goal_id" swaggertype:"string"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create an income or expense. Paid transactions on an account move its balance.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or linked resource"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	txn, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		Description:  req.Description,
		Amount:       req.Amount,
		Type:         req.Type,
		Date:         date,
		IsPaid:       req.IsPaid,
		CategoryID:   req.CategoryID,
		AccountID:    req.AccountID,
		CreditCardID: req.CreditCardID,
		GoalID:       req.GoalID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(),
		map[string]interface{}{
			"type":    txn.Type,
			"amount":  txn.Amount.String(),
			"is_paid": txn.IsPaid,
		})

	respondWithSuccess(c, http.StatusCreated, txn, "Transaction created successfully")
}

// GetUserTransactions lists transactions with filters and pagination
// @Summary     List transactions
// @Description Paginated transactions, newest first, with totals over the filtered set
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page           query int    false "Page number (default 1)"
// @Param       limit          query int    false "Items per page (default 10, max 100)"
// @Param       type           query string false "Filter by type" Enums(income, expense)
// @Param       category_id    query string false "Filter by category ID"
// @Param       account_id     query string false "Filter by account ID"
// @Param       credit_card_id query string false "Filter by credit card ID"
// @Param       goal_id        query string false "Filter by goal ID"
// @Param       is_paid        query bool   false "Filter by paid flag"
// @Param       start_date     query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       end_date       query string false "End date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Param       min_amount     query number false "Minimum amount"
// @Param       max_amount     query number false "Maximum amount"
// @Success     200 {object} services.TransactionList "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, result, "")
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	if filter.FromDate, err = parseOptionalDate(c.Query("start_date"), "start_date"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseOptionalEndDate(c.Query("end_date"), "end_date"); err != nil {
		return filter, err
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income or expense")
		}
		filter.Type = &txType
	}

	refs := []struct {
		param string
		dst   **string
	}{
		{"category_id", &filter.CategoryID},
		{"account_id", &filter.AccountID},
		{"credit_card_id", &filter.CreditCardID},
		{"goal_id", &filter.GoalID},
	}
	for _, ref := range refs {
		v := c.Query(ref.param)
		if v == "" {
			continue
		}
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessagef(apperrors.ErrInvalidInput, "invalid %s", ref.param)
		}
		*ref.dst = &v
	}

	if v := c.Query("is_paid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid is_paid")
		}
		filter.IsPaid = &paid
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	return filter, nil
}

// GetTransactionStats summarises transactions in a date range
// @Summary     Transaction statistics
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       start_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       end_date   query string false "End date, inclusive (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} services.TransactionStats "Statistics"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/stats [get]
func (h *TransactionHandler) GetTransactionStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, err := parseOptionalDate(c.Query("start_date"), "start_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseOptionalEndDate(c.Query("end_date"), "end_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.transactionService.GetTransactionStats(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, stats, "")
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, txn, "")
}

// UpdateTransaction applies a partial update and reconciles balances and goals
// @Summary     Update transaction
// @Description Partial update. The old balance effect is reversed and the new one applied.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Transaction changes"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or linked resource"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.UpdateTransaction(userID, transactionID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	respondWithSuccess(c, http.StatusOK, txn, "Transaction updated successfully")
}

func (r UpdateTransactionRequest) toPatch() (services.TransactionPatch, error) {
	patch := services.TransactionPatch{
		Description: r.Description,
		Amount:      r.Amount,
		Type:        r.Type,
		IsPaid:      r.IsPaid,
		CategoryID:  r.CategoryID,
	}

	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
		}
		patch.Date = &date
	}

	var err error
	if patch.AccountID, err = r.AccountID.patch("account_id"); err != nil {
		return patch, err
	}
	if patch.CreditCardID, err = r.CreditCardID.patch("credit_card_id"); err != nil {
		return patch, err
	}
	if patch.GoalID, err = r.GoalID.patch("goal_id"); err != nil {
		return patch, err
	}
	return patch, nil
}

// DeleteTransaction reverses a transaction's effects and removes it
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} SuccessResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	respondWithSuccess(c, http.StatusOK, nil, "Transaction deleted successfully")
}
