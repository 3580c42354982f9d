package helpers

import (
	"time"

	"auction-engine/internal/bidding"
	"auction-engine/internal/finalizer"
	model "auction-engine/internal/models"
)

// Response DTOs
type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Amount    int64  `json:"amount"`
	IsBot     bool   `json:"is_bot"`
	CreatedAt string `json:"created_at"`
}

type BotCycleResponse struct {
	BotsLoaded     int `json:"bots_loaded"`
	BotsInactive   int `json:"bots_inactive"`
	BotsSkipped    int `json:"bots_skipped"`
	AuctionsActive int `json:"auctions_active"`
	BidsPlaced     int `json:"bids_placed"`
	NoOps          int `json:"no_ops"`
	Failures       int `json:"failures"`
}

type FinalizationResponse struct {
	Candidates    int `json:"candidates"`
	Ended         int `json:"ended"`
	Unsold        int `json:"unsold"`
	BotWinners    int `json:"bot_winners"`
	OrdersCreated int `json:"orders_created"`
	Repaired      int `json:"repaired"`
	Skipped       int `json:"skipped"`
	Failures      int `json:"failures"`
}

// NewBidResponse converts a stored bid
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.ID,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Username:  bid.Username,
		Amount:    bid.Amount,
		IsBot:     bid.IsBot,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewBotCycleResponse(r bidding.BotCycleReport) BotCycleResponse {
	return BotCycleResponse(r)
}

func NewFinalizationResponse(r finalizer.FinalizationReport) FinalizationResponse {
	return FinalizationResponse(r)
}
