package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	"github.com/samiti-tech/nonprofit_fund_app/internal/core/domain"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
	"github.com/samiti-tech/nonprofit_fund_app/internal/middleware"
)

// expenseHandler handles HTTP requests related to expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
	}
}

// registerExpenseRoutes registers routes related to expenses.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("/:id", h.getExpense)
		expenses.GET("", h.listExpenses)
		expenses.PUT("/:id", h.updateExpense)
		expenses.DELETE("/:id", h.deleteExpense)

		expenses.POST("/:id/submit", h.submitExpense)
		expenses.POST("/:id/finalize", h.finalizeExpense)
		expenses.POST("/:id/reject", h.rejectExpense)
		expenses.POST("/:id/settle", h.settleExpense)
	}
}

// createExpense godoc
// @Summary Record a new draft expense
// @Description Creates an expense in DRAFT status with its line items; the total is the sum of the items
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create expense", slog.Int("item_count", len(req.Items)))

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Warn("Failed to create expense", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to create expense")})
		return
	}

	logger.Info("Expense created successfully", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// getExpense godoc
// @Summary Get an expense by ID
// @Description Retrieves an expense with its line items
// @Tags expenses
// @Produce  json
// @Param   id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Security BearerAuth
// @Router /expenses/{id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("id")

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Expense not found", slog.String("expense_id", expenseID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		} else {
			logger.Error("Failed to get expense from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expense"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Description Retrieves a filtered, paginated list of expenses, newest first
// @Tags expenses
// @Produce  json
// @Param   status query string false "Filter by status"
// @Param   referenceType query string false "Filter by reference type"
// @Param   requestedBy query string false "Filter by requester"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListExpenses", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.expenseService.ListExpenses(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list expenses from service", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to list expenses")})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateExpense godoc
// @Summary Update a draft expense
// @Description Amends a DRAFT expense; a non-empty item set replaces the existing one and recomputes the total
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   id path string true "Expense ID"
// @Param   expense body dto.UpdateExpenseRequest true "Fields to update"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 409 {object} map[string]string "Expense not in DRAFT status"
// @Security BearerAuth
// @Router /expenses/{id} [put]
func (h *expenseHandler) updateExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("id")

	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("expense_id", expenseID), slog.String("updater_user_id", requestingUserID))
	logger.Info("Received request to update expense")

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), expenseID, req, requestingUserID)
	if err != nil {
		logger.Warn("Failed to update expense", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to update expense")})
		return
	}

	logger.Info("Expense updated successfully")
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// deleteExpense godoc
// @Summary Delete an expense
// @Description Tombstones an expense that was never settled
// @Tags expenses
// @Produce  json
// @Param   id path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 409 {object} map[string]string "Settled expenses cannot be deleted"
// @Security BearerAuth
// @Router /expenses/{id} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("expense_id", expenseID), slog.String("deleter_user_id", requestingUserID))
	logger.Info("Received request to delete expense")

	if err := h.expenseService.DeleteExpense(c.Request.Context(), expenseID, requestingUserID); err != nil {
		logger.Warn("Failed to delete expense", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to delete expense")})
		return
	}

	logger.Info("Expense deleted successfully")
	c.Status(http.StatusNoContent)
}

// submitExpense godoc
// @Summary Submit a draft expense for review
// @Tags expenses
// @Produce  json
// @Param   id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 409 {object} map[string]string "Expense not in DRAFT status"
// @Security BearerAuth
// @Router /expenses/{id}/submit [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	h.lifecycleTransition(c, "SubmitExpense", h.expenseService.SubmitExpense)
}

// finalizeExpense godoc
// @Summary Finalize a submitted expense
// @Description Approves a submitted expense for settlement
// @Tags expenses
// @Produce  json
// @Param   id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 409 {object} map[string]string "Expense not in SUBMITTED status"
// @Security BearerAuth
// @Router /expenses/{id}/finalize [post]
func (h *expenseHandler) finalizeExpense(c *gin.Context) {
	h.lifecycleTransition(c, "FinalizeExpense", h.expenseService.FinalizeExpense)
}

// lifecycleTransition runs a body-less expense lifecycle transition.
func (h *expenseHandler) lifecycleTransition(
	c *gin.Context,
	action string,
	fn func(ctx context.Context, expenseID, userID string) (*domain.Expense, error),
) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received expense lifecycle transition",
		slog.String("expense_id", expenseID),
		slog.String("action", action),
		slog.String("user_id", userID),
	)

	expense, err := fn(c.Request.Context(), expenseID, userID)
	if err != nil {
		logger.Warn("Expense lifecycle transition failed",
			slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to update expense status")})
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// rejectExpense godoc
// @Summary Reject a submitted expense
// @Description Returns a submitted expense to its requester with remarks
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   id path string true "Expense ID"
// @Param   rejection body dto.RejectExpenseRequest true "Rejection remarks"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 409 {object} map[string]string "Expense not in SUBMITTED status"
// @Security BearerAuth
// @Router /expenses/{id}/reject [post]
func (h *expenseHandler) rejectExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("id")

	var req dto.RejectExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("expense_id", expenseID), slog.String("user_id", userID))
	logger.Info("Received request to reject expense")

	expense, err := h.expenseService.RejectExpense(c.Request.Context(), expenseID, req.Remarks, userID)
	if err != nil {
		logger.Warn("Failed to reject expense", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to reject expense")})
		return
	}

	logger.Info("Expense rejected successfully")
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// settleExpense godoc
// @Summary Settle a finalized expense
// @Description Pays the expense out of the named account and posts the disbursement to the ledger
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   id path string true "Expense ID"
// @Param   settlement body dto.SettleExpenseRequest true "Settlement account"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Expense not found"
// @Failure 409 {object} map[string]string "Expense not in FINALIZED status or already settled"
// @Failure 422 {object} map[string]string "Settlement account cannot cover the expense"
// @Security BearerAuth
// @Router /expenses/{id}/settle [post]
func (h *expenseHandler) settleExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("id")

	var req dto.SettleExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SettleExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("expense_id", expenseID), slog.String("user_id", userID))
	logger.Info("Received request to settle expense", slog.String("settlement_account_id", req.SettlementAccountID))

	expense, err := h.expenseService.SettleExpense(c.Request.Context(), expenseID, req, userID)
	if err != nil {
		logger.Warn("Failed to settle expense", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to settle expense")})
		return
	}

	logger.Info("Expense settled successfully")
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
