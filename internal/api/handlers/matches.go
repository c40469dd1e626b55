package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pockettrack/backend/internal/api/dto"
	"github.com/pockettrack/backend/internal/application/reconcile"
	"github.com/pockettrack/backend/internal/infrastructure/storage"
)

// MatchesHandler handles potential match review requests.
type MatchesHandler struct {
	*Base
	reconciler *reconcile.Service
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(repo storage.Repository, reconciler *reconcile.Service) *MatchesHandler {
	return &MatchesHandler{
		Base:       NewBase(repo),
		reconciler: reconciler,
	}
}

// List handles GET /api/matches.
func (h *MatchesHandler) List(c *gin.Context) {
	matches, err := h.reconciler.PotentialMatches(c.Request.Context(), UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.JSON(http.StatusOK, dto.MatchListResponse{
		Matches: matches,
		Count:   len(matches),
	})
}

// Dismiss handles POST /api/matches/:id/dismiss. Dismissing an absent
// match succeeds, so retries are safe.
func (h *MatchesHandler) Dismiss(c *gin.Context) {
	if err := h.reconciler.DismissMatch(c.Request.Context(), UserID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}
	c.Status(http.StatusNoContent)
}

// Confirm handles POST /api/matches/confirm: the user accepts a
// suggested match and the manual transaction flips to paid.
func (h *MatchesHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationError(err.Error()))
		return
	}

	err := h.reconciler.ManualMatch(c.Request.Context(), UserID(c), req.ManualTransactionID, req.BankTransactionID)
	if errors.Is(err, reconcile.ErrNotPending) {
		c.JSON(http.StatusConflict, dto.ConflictError("transaction is not pending"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.InternalError())
		return
	}

	c.Status(http.StatusNoContent)
}
