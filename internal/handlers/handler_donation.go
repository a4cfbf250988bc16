package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samiti-tech/nonprofit_fund_app/internal/apperrors"
	portssvc "github.com/samiti-tech/nonprofit_fund_app/internal/core/ports/services"
	"github.com/samiti-tech/nonprofit_fund_app/internal/dto"
	"github.com/samiti-tech/nonprofit_fund_app/internal/middleware"
)

// donationHandler handles HTTP requests related to donations.
type donationHandler struct {
	donationService portssvc.DonationSvcFacade
}

// newDonationHandler creates a new donationHandler.
func newDonationHandler(ds portssvc.DonationSvcFacade) *donationHandler {
	return &donationHandler{
		donationService: ds,
	}
}

// registerDonationRoutes registers routes related to donations.
func registerDonationRoutes(rg *gin.RouterGroup, donationService portssvc.DonationSvcFacade) {
	h := newDonationHandler(donationService)

	donations := rg.Group("/donations")
	{
		donations.POST("", h.createDonation)
		donations.GET("/:id", h.getDonation)
		donations.GET("", h.listDonations)
		donations.PUT("/:id", h.updateDonation)
		donations.DELETE("/:id", h.deleteDonation)

		donations.POST("/:id/mark-paid", h.markDonationPaid)
		donations.POST("/:id/cancel", h.cancelDonation)
		donations.POST("/:id/mark-failed", h.markDonationFailed)
		donations.POST("/:id/mark-pending", h.markDonationPending)
		donations.POST("/:id/pay-later", h.markDonationPayLater)
		donations.POST("/:id/correct", h.correctDonation)
	}
}

// createDonation godoc
// @Summary Raise a new donation
// @Description Records a pledged donation in RAISED status
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   donation body dto.CreateDonationRequest true "Donation details"
// @Success 201 {object} dto.DonationResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /donations [post]
func (h *donationHandler) createDonation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDonation", slog.String("error", err.Error()))
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
	logger.Info("Received request to create donation")

	donation, err := h.donationService.CreateDonation(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Warn("Failed to create donation", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to create donation")})
		return
	}

	logger.Info("Donation created successfully", slog.String("donation_id", donation.DonationID))
	c.JSON(http.StatusCreated, dto.ToDonationResponse(donation))
}

// getDonation godoc
// @Summary Get a donation by ID
// @Tags donations
// @Produce  json
// @Param   id path string true "Donation ID"
// @Success 200 {object} dto.DonationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Donation not found"
// @Security BearerAuth
// @Router /donations/{id} [get]
func (h *donationHandler) getDonation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	donationID := c.Param("id")

	donation, err := h.donationService.GetDonationByID(c.Request.Context(), donationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Donation not found", slog.String("donation_id", donationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Donation not found"})
		} else {
			logger.Error("Failed to get donation from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve donation"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDonationResponse(donation))
}

// listDonations godoc
// @Summary List donations
// @Description Retrieves a filtered, paginated list of donations, newest first
// @Tags donations
// @Produce  json
// @Param   status query string false "Filter by status"
// @Param   donationType query string false "Filter by donation type"
// @Param   donorId query string false "Filter by donor"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListDonationsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /donations [get]
func (h *donationHandler) listDonations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListDonationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListDonations", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.donationService.ListDonations(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list donations from service", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to list donations")})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateDonation godoc
// @Summary Update a donation
// @Description Amends a donation's mutable fields; paid donations cannot be amended
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   id path string true "Donation ID"
// @Param   donation body dto.UpdateDonationRequest true "Fields to update"
// @Success 200 {object} dto.DonationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Donation not found"
// @Failure 409 {object} map[string]string "Donation not in an amendable state"
// @Security BearerAuth
// @Router /donations/{id} [put]
func (h *donationHandler) updateDonation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	donationID := c.Param("id")

	var req dto.UpdateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDonation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("donation_id", donationID), slog.String("updater_user_id", requestingUserID))
	logger.Info("Received request to update donation")

	donation, err := h.donationService.UpdateDonation(c.Request.Context(), donationID, req, requestingUserID)
	if err != nil {
		logger.Warn("Failed to update donation", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to update donation")})
		return
	}

	logger.Info("Donation updated successfully")
	c.JSON(http.StatusOK, dto.ToDonationResponse(donation))
}

// deleteDonation godoc
// @Summary Delete a donation
// @Description Tombstones a donation that was never paid
// @Tags donations
// @Produce  json
// @Param   id path string true "Donation ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Donation not found"
// @Failure 409 {object} map[string]string "Paid donations cannot be deleted"
// @Security BearerAuth
// @Router /donations/{id} [delete]
func (h *donationHandler) deleteDonation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	donationID := c.Param("id")

	requestingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Requesting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("donation_id", donationID), slog.String("deleter_user_id", requestingUserID))
	logger.Info("Received request to delete donation")

	if err := h.donationService.DeleteDonation(c.Request.Context(), donationID, requestingUserID); err != nil {
		logger.Warn("Failed to delete donation", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to delete donation")})
		return
	}

	logger.Info("Donation deleted successfully")
	c.Status(http.StatusNoContent)
}

// markDonationPaid godoc
// @Summary Mark a donation as paid
// @Description Confirms payment and posts the receipt to the ledger. Retrying a confirmed donation is rejected as a duplicate.
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   id path string true "Donation ID"
// @Param   payment body dto.MarkDonationPaidRequest true "Payment details"
// @Success 200 {object} dto.DonationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Donation not found"
// @Failure 409 {object} map[string]string "Donation already paid"
// @Failure 422 {object} map[string]string "Target account cannot receive the payment"
// @Security BearerAuth
// @Router /donations/{id}/mark-paid [post]
func (h *donationHandler) markDonationPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	donationID := c.Param("id")

	var req dto.MarkDonationPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MarkDonationPaid", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	confirmedBy, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Confirming user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("donation_id", donationID), slog.String("confirmed_by", confirmedBy))
	logger.Info("Received request to mark donation paid", slog.String("paid_to_account_id", req.PaidToAccountID))

	donation, err := h.donationService.MarkDonationPaid(c.Request.Context(), donationID, req, confirmedBy)
	if err != nil {
		logger.Warn("Failed to mark donation paid", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to mark donation paid")})
		return
	}

	logger.Info("Donation marked paid successfully")
	c.JSON(http.StatusOK, dto.ToDonationResponse(donation))
}

// statusTransition runs a reason-carrying lifecycle transition shared by the
// cancel, fail, pay-later and correct endpoints.
func (h *donationHandler) statusTransition(
	c *gin.Context,
	action string,
	fn func(ctx *gin.Context, donationID, reason, userID string) error,
) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	donationID := c.Param("id")

	var req dto.DonationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received donation status transition",
		slog.String("donation_id", donationID),
		slog.String("action", action),
		slog.String("user_id", userID),
	)

	if err := fn(c, donationID, req.Reason, userID); err != nil {
		logger.Warn("Donation status transition failed",
			slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to update donation status")})
	}
}

func (h *donationHandler) cancelDonation(c *gin.Context) {
	h.statusTransition(c, "CancelDonation", func(ctx *gin.Context, donationID, reason, userID string) error {
		donation, err := h.donationService.CancelDonation(ctx.Request.Context(), donationID, reason, userID)
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, dto.ToDonationResponse(donation))
		return nil
	})
}

func (h *donationHandler) markDonationFailed(c *gin.Context) {
	h.statusTransition(c, "MarkDonationFailed", func(ctx *gin.Context, donationID, reason, userID string) error {
		donation, err := h.donationService.MarkDonationFailed(ctx.Request.Context(), donationID, reason, userID)
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, dto.ToDonationResponse(donation))
		return nil
	})
}

func (h *donationHandler) markDonationPayLater(c *gin.Context) {
	h.statusTransition(c, "MarkDonationPayLater", func(ctx *gin.Context, donationID, reason, userID string) error {
		donation, err := h.donationService.MarkDonationPayLater(ctx.Request.Context(), donationID, reason, userID)
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, dto.ToDonationResponse(donation))
		return nil
	})
}

// correctDonation godoc
// @Summary Correct a mistakenly paid donation
// @Description Reverses the linked journal entry and reopens the donation as RAISED for re-entry
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   id path string true "Donation ID"
// @Param   correction body dto.DonationStatusRequest true "Correction reason"
// @Success 200 {object} dto.DonationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Donation not found"
// @Failure 409 {object} map[string]string "Donation not paid or journal already reversed"
// @Failure 422 {object} map[string]string "Linked journal outside the reversal window"
// @Security BearerAuth
// @Router /donations/{id}/correct [post]
func (h *donationHandler) correctDonation(c *gin.Context) {
	h.statusTransition(c, "CorrectDonation", func(ctx *gin.Context, donationID, reason, userID string) error {
		donation, err := h.donationService.CorrectDonation(ctx.Request.Context(), donationID, reason, userID)
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, dto.ToDonationResponse(donation))
		return nil
	})
}

// markDonationPending godoc
// @Summary Move a donation into payment processing
// @Tags donations
// @Produce  json
// @Param   id path string true "Donation ID"
// @Success 200 {object} dto.DonationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Donation not found"
// @Failure 409 {object} map[string]string "Donation not in a pending-eligible state"
// @Security BearerAuth
// @Router /donations/{id}/mark-pending [post]
func (h *donationHandler) markDonationPending(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	donationID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("donation_id", donationID), slog.String("user_id", userID))
	logger.Info("Received request to mark donation pending")

	donation, err := h.donationService.MarkDonationPending(c.Request.Context(), donationID, userID)
	if err != nil {
		logger.Warn("Failed to mark donation pending", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": errorMessage(err, "Failed to mark donation pending")})
		return
	}

	c.JSON(http.StatusOK, dto.ToDonationResponse(donation))
}
