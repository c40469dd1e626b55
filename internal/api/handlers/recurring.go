package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pockettrack/backend/internal/api/dto"
	"github.com/pockettrack/backend/internal/domain/recurring"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// RecurringHandler handles recurring definition HTTP requests.
type RecurringHandler struct {
	*Base
}

// NewRecurringHandler creates a new recurring handler.
func NewRecurringHandler(repo storage.Repository) *RecurringHandler {
	return &RecurringHandler{Base: NewBase(repo)}
}

// List handles GET /api/recurring. Pass active=true to restrict to
// active definitions.
func (h *RecurringHandler) List(c *gin.Context) {
	var (
		defs []*storage.RecurringTransaction
		err  error
	)
	if ParseBoolQuery(c, "active", false) {
		defs, err = h.repo.ListActiveRecurring(UserID(c))
	} else {
		defs, err = h.repo.ListRecurring(UserID(c))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, dto.RecurringListResponse{
		Recurring: defs,
		Count:     len(defs),
	})
}

// Create handles POST /api/recurring. The first due date defaults to
// the start date when the client omits it.
func (h *RecurringHandler) Create(c *gin.Context) {
	var req dto.CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	freq := recurring.Frequency(req.Frequency)
	nextDue := req.StartDate
	if req.NextDueDate != nil {
		nextDue = *req.NextDueDate
	}

	def := &storage.RecurringTransaction{
		ID:          uuid.NewString(),
		UserID:      UserID(c),
		Name:        req.Name,
		Amount:      req.Amount,
		Category:    req.Category,
		Type:        req.Type,
		Frequency:   string(freq),
		IsActive:    true,
		StartDate:   req.StartDate,
		NextDueDate: nextDue,
		EndDate:     req.EndDate,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.repo.SaveRecurring(def); err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusCreated, def)
}

// Deactivate handles POST /api/recurring/:id/deactivate. Deactivated
// definitions stop producing matching candidates.
func (h *RecurringHandler) Deactivate(c *gin.Context) {
	ok, err := h.repo.DeactivateRecurring(UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, dto.NotFoundError("active recurring definition"))
		return
	}
	c.Status(http.StatusNoContent)
}
