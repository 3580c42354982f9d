package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"auction-engine/internal/bidding"
	"auction-engine/internal/finalizer"
	model "auction-engine/internal/models"
	"auction-engine/services/lifecycle/helpers"
	"auction-engine/utils"
)

//go:generate mockgen -source=lifecycle_handler.go -destination=mock_service.go -package=handler

type LifecycleService interface {
	RunBotCycle(ctx context.Context) (bidding.BotCycleReport, error)
	RunFinalizationCycle(ctx context.Context) (finalizer.FinalizationReport, error)
	GetBids(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error)
}

type LifecycleHandler struct {
	service LifecycleService
}

func NewLifecycleHandler(service LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{service: service}
}

// RunBotCycleHandler handles POST /cycles/bots
func (h *LifecycleHandler) RunBotCycleHandler(c *gin.Context) {
	report, err := h.service.RunBotCycle(c.Request.Context())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RunBotCycleHandler: bot cycle failed", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBotCycleResponse(report), "bot cycle completed")
	helpers.LogSuccess("RunBotCycleHandler", "bot cycle completed", map[string]any{
		"bids_placed": report.BidsPlaced,
		"failures":    report.Failures,
	})
}

// RunFinalizationHandler handles POST /cycles/finalization
func (h *LifecycleHandler) RunFinalizationHandler(c *gin.Context) {
	report, err := h.service.RunFinalizationCycle(c.Request.Context())
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("RunFinalizationHandler: finalization cycle failed", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewFinalizationResponse(report), "finalization cycle completed")
	helpers.LogSuccess("RunFinalizationHandler", "finalization cycle completed", map[string]any{
		"ended":          report.Ended,
		"orders_created": report.OrdersCreated,
		"failures":       report.Failures,
	})
}

// GetBidsHandler handles GET /auctions/:auction_id/bids
func (h *LifecycleHandler) GetBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bids, err := h.service.GetBids(c.Request.Context(), auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsHandler: error retrieving bids", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, bid := range bids {
		resp = append(resp, helpers.NewBidResponse(bid))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetWinningBidHandler handles GET /auctions/:auction_id/winning
func (h *LifecycleHandler) GetWinningBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	bid, err := h.service.GetWinningBid(c.Request.Context(), auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWinningBidHandler: winning bid error", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winning bid retrieved successfully")
	helpers.LogSuccess("GetWinningBidHandler", "winning bid retrieved successfully", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": auctionID,
		"user_id":    bid.UserID,
		"amount":     bid.Amount,
	})
}

// HealthHandler handles GET /healthz
func (h *LifecycleHandler) HealthHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, nil, "ok")
}
