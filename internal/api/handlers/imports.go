package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pockettrack/backend/internal/api/dto"
	"github.com/pockettrack/backend/internal/application/budget"
	"github.com/pockettrack/backend/internal/application/reconcile"
	"github.com/pockettrack/backend/internal/domain/matcher"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// ImportsHandler handles bank-feed import requests.
type ImportsHandler struct {
	*Base
	reconciler *reconcile.Service
	budget     *budget.Service
}

// NewImportsHandler creates a new imports handler. budgetService may be
// nil, in which case no cache invalidation happens after imports.
func NewImportsHandler(repo storage.Repository, reconciler *reconcile.Service, budgetService *budget.Service) *ImportsHandler {
	return &ImportsHandler{
		Base:       NewBase(repo),
		reconciler: reconciler,
		budget:     budgetService,
	}
}

// Import handles POST /api/import: reconcile a batch of bank
// transactions against the user's pending candidates.
func (h *ImportsHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	userID := UserID(c)

	records := make([]matcher.BankTransaction, 0, len(req.Transactions))
	for _, t := range req.Transactions {
		records = append(records, matcher.BankTransaction{
			ID:       t.TransactionID,
			Name:     t.Name,
			Amount:   t.Amount,
			Category: t.Category,
			Date:     t.Date,
		})
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	result, err := h.reconciler.RunBatch(c.Request.Context(), userID, records, reconcile.Options{
		Source: source,
		DryRun: req.DryRun,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	if h.budget != nil && !req.DryRun {
		h.budget.Invalidate(userID)
	}

	c.JSON(http.StatusOK, dto.ImportResultResponse{
		RunID:     result.RunID,
		DryRun:    req.DryRun,
		Processed: result.Processed,
		Matched:   result.Matched,
		Stored:    result.Stored,
		Potential: result.Potential,
		Errors:    result.Errors,
	})
}

// ListRuns handles GET /api/imports.
func (h *ImportsHandler) ListRuns(c *gin.Context) {
	limit := ParseIntQuery(c, "limit", 20)

	runs, err := h.repo.ListImportRuns(UserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, dto.ImportRunListResponse{
		Runs:  runs,
		Count: len(runs),
	})
}
