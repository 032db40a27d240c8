package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"juntos/internal/services"
)

// CreditCardHandler handles credit card requests.
type CreditCardHandler struct {
	creditCardService services.CreditCardServicer
	auditService      services.AuditServicer
}

// NewCreditCardHandler creates a new CreditCardHandler.
func NewCreditCardHandler(creditCardService services.CreditCardServicer, auditService services.AuditServicer) *CreditCardHandler {
	return &CreditCardHandler{creditCardService: creditCardService, auditService: auditService}
}

// CreateCreditCardRequest represents the request payload for creating a credit card
type CreateCreditCardRequest struct {
	Name       string          `json:"name" binding:"required,min=1,max=100"`
	Limit      decimal.Decimal `json:"limit" binding:"required,gt=0"`
	ClosingDay int             `json:"closing_day" binding:"required,day_of_month"`
	DueDay     int             `json:"due_day" binding:"required,day_of_month"`
}

// UpdateCreditCardRequest represents the request payload for updating a credit card
type UpdateCreditCardRequest struct {
	Name       *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Limit      *decimal.Decimal `json:"limit" binding:"omitempty,gt=0"`
	ClosingDay *int             `json:"closing_day" binding:"omitempty,day_of_month"`
	DueDay     *int             `json:"due_day" binding:"omitempty,day_of_month"`
}

// CreateCreditCard handles the creation of a credit card
// @Summary     Create a credit card
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCreditCardRequest true "Credit card details"
// @Success     201 {object} models.CreditCard "Credit card created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /credit-cards [post]
func (h *CreditCardHandler) CreateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	card, err := h.creditCardService.CreateCreditCard(userID, services.CreditCardInput{
		Name:       req.Name,
		Limit:      req.Limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CREDIT_CARD", "credit_card", card.ID, c.ClientIP(),
		map[string]interface{}{"name": card.Name, "limit": card.Limit.String()})

	respondWithSuccess(c, http.StatusCreated, card, "Credit card created successfully")
}

// GetUserCreditCards lists the user's credit cards
// @Summary     List credit cards
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.CreditCard "Credit cards"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /credit-cards [get]
func (h *CreditCardHandler) GetUserCreditCards(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cards, err := h.creditCardService.GetUserCreditCards(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, cards, "")
}

// GetCreditCardByID returns a specific credit card
// @Summary     Get credit card by ID
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Credit card ID"
// @Success     200 {object} models.CreditCard "Credit card"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Credit card not found"
// @Router      /credit-cards/{id} [get]
func (h *CreditCardHandler) GetCreditCardByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.creditCardService.GetCreditCardByID(userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, card, "")
}

// UpdateCreditCard updates a credit card
// @Summary     Update credit card
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Credit card ID"
// @Param       request body UpdateCreditCardRequest true "Credit card changes"
// @Success     200 {object} models.CreditCard "Updated credit card"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Credit card not found"
// @Router      /credit-cards/{id} [put]
func (h *CreditCardHandler) UpdateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	card, err := h.creditCardService.UpdateCreditCard(userID, cardID, services.CreditCardUpdateFields{
		Name:       req.Name,
		Limit:      req.Limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CREDIT_CARD", "credit_card", cardID, c.ClientIP(), nil)

	respondWithSuccess(c, http.StatusOK, card, "Credit card updated successfully")
}

// DeleteCreditCard deletes a credit card that no transaction uses
// @Summary     Delete credit card
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Credit card ID"
// @Success     200 {object} SuccessResponse "Credit card deleted"
// @Failure     400 {object} ErrorResponse "Credit card in use"
// @Failure     404 {object} ErrorResponse "Credit card not found"
// @Router      /credit-cards/{id} [delete]
func (h *CreditCardHandler) DeleteCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.creditCardService.DeleteCreditCard(userID, cardID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CREDIT_CARD", "credit_card", cardID, c.ClientIP(), nil)

	respondWithSuccess(c, http.StatusOK, nil, "Credit card deleted successfully")
}

// GetCreditCardStats returns the current month's usage of a card
// @Summary     Credit card statistics
// @Description Limit usage for the current month, counting every expense on the card
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Credit card ID"
// @Success     200 {object} services.CreditCardStats "Statistics"
// @Failure     404 {object} ErrorResponse "Credit card not found"
// @Router      /credit-cards/{id}/stats [get]
func (h *CreditCardHandler) GetCreditCardStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.creditCardService.GetCreditCardStats(userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, stats, "")
}
