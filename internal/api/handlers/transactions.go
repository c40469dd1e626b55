package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pockettrack/backend/internal/api/dto"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// TransactionsHandler handles transaction-related HTTP requests.
type TransactionsHandler struct {
	*Base
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo storage.Repository) *TransactionsHandler {
	return &TransactionsHandler{Base: NewBase(repo)}
}

// List handles GET /api/transactions.
func (h *TransactionsHandler) List(c *gin.Context) {
	filters := storage.TransactionFilters{
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		Category: c.Query("category"),
		Limit:    ParseIntQuery(c, "limit", 50),
		Offset:   ParseIntQuery(c, "offset", 0),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid from date"))
			return
		}
		filters.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid to date"))
			return
		}
		filters.To = t
	}

	txs, err := h.repo.ListTransactions(UserID(c), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, dto.TransactionListResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}

// Get handles GET /api/transactions/:id.
func (h *TransactionsHandler) Get(c *gin.Context) {
	tx, err := h.repo.GetTransaction(UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if tx == nil {
		c.JSON(http.StatusNotFound, dto.NotFoundError("transaction"))
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Create handles POST /api/transactions. Manual transactions start
// pending and become matching candidates for incoming bank data.
func (h *TransactionsHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	now := time.Now().UTC()
	tx := &storage.Transaction{
		ID:          uuid.NewString(),
		UserID:      UserID(c),
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		Type:        req.Type,
		Status:      storage.StatusPending,
		IsManual:    true,
		CreatedAt:   now,
	}

	if err := h.repo.SaveTransaction(tx); err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// Cancel handles POST /api/transactions/:id/cancel. Only pending manual
// transactions can be cancelled; cancelled ones never match again.
func (h *TransactionsHandler) Cancel(c *gin.Context) {
	ok, err := h.repo.CancelTransaction(UserID(c), c.Param("id"), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, dto.ConflictError("transaction is not pending"))
		return
	}
	c.Status(http.StatusNoContent)
}
