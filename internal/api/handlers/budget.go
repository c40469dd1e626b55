package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pockettrack/backend/internal/api/dto"
	"github.com/pockettrack/backend/internal/application/budget"
	"github.com/pockettrack/backend/internal/domain/allocation"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// BudgetHandler handles budget category and summary requests.
type BudgetHandler struct {
	*Base
	budget *budget.Service
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(repo storage.Repository, budgetService *budget.Service) *BudgetHandler {
	return &BudgetHandler{
		Base:   NewBase(repo),
		budget: budgetService,
	}
}

// ListCategories handles GET /api/budget/categories. Default categories
// are seeded on first access.
func (h *BudgetHandler) ListCategories(c *gin.Context) {
	userID := UserID(c)

	if err := h.repo.SeedDefaultCategories(userID); err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	categories, err := h.repo.ListBudgetCategories(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// CreateCategory handles POST /api/budget/categories.
func (h *BudgetHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateBudgetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	userID := UserID(c)
	category := &storage.BudgetCategory{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		MonthlyLimit: req.MonthlyLimit,
		Color:        req.Color,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.repo.SaveBudgetCategory(category); err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.budget.Invalidate(userID)
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory handles DELETE /api/budget/categories/:id. Seeded
// default categories are protected and cannot be deleted.
func (h *BudgetHandler) DeleteCategory(c *gin.Context) {
	userID := UserID(c)

	err := h.repo.DeleteBudgetCategory(userID, c.Param("id"))
	if errors.Is(err, storage.ErrProtectedCategory) {
		c.JSON(http.StatusConflict, dto.ConflictError("default categories cannot be deleted"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.budget.Invalidate(userID)
	c.Status(http.StatusNoContent)
}

// Summary handles GET /api/budget/summary. The month query parameter is
// YYYY-MM and defaults to the current month; allocation settings come
// from query parameters.
func (h *BudgetHandler) Summary(c *gin.Context) {
	month := time.Now().UTC()
	if m := c.Query("month"); m != "" {
		parsed, err := time.Parse("2006-01", m)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid month, expected YYYY-MM"))
			return
		}
		month = parsed
	}

	settings := budget.AllocationSettings{
		SavingsPct:        ParseFloatQuery(c, "savings_pct", 0),
		DebtPct:           ParseFloatQuery(c, "debt_pct", 0),
		GoalContributions: ParseFloatQuery(c, "goal_contributions", 0),
		Flags: allocation.Flags{
			IncludeSavings: ParseBoolQuery(c, "include_savings", false),
			IncludeDebt:    ParseBoolQuery(c, "include_debt", false),
			IncludeGoals:   ParseBoolQuery(c, "include_goals", false),
		},
	}

	summary, err := h.budget.MonthSummary(c.Request.Context(), UserID(c), month, settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, summary)
}
