package lifecycle

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/bidding"
	"auction-engine/internal/finalizer"
	"auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
)

// Task names
const (
	TaskBotCycle          = "bot_cycle"
	TaskFinalizationCycle = "finalization_cycle"
)

// Service is the entry point to the auction lifecycle: the two periodic
// cycles plus read access to bids.
type Service struct {
	repo      repository.MarketDB
	bots      *bidding.BotCycle
	finalizer *finalizer.Finalizer
}

// NewService creates a new Service instance
func NewService(repo repository.MarketDB, bots *bidding.BotCycle, fin *finalizer.Finalizer) *Service {
	return &Service{
		repo:      repo,
		bots:      bots,
		finalizer: fin,
	}
}

// RunBotCycle lets every valid active bot bid once
func (s *Service) RunBotCycle(ctx context.Context) (bidding.BotCycleReport, error) {
	report, err := s.bots.Run(ctx)
	if err != nil {
		return report, fmt.Errorf("service: bot cycle failed: %w", err)
	}
	return report, nil
}

// RunFinalizationCycle ends expired auctions and settles winners
func (s *Service) RunFinalizationCycle(ctx context.Context) (finalizer.FinalizationReport, error) {
	report, err := s.finalizer.Run(ctx)
	if err != nil {
		return report, fmt.Errorf("service: finalization cycle failed: %w", err)
	}
	return report, nil
}

// GetBids returns the bids of an auction in append order
func (s *Service) GetBids(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuctionID)
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return auction.Bids, nil
}

// GetWinningBid returns the bid that wins (or would win) the auction
func (s *Service) GetWinningBid(ctx context.Context, auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidAuctionID)
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get winning bid for auction %s: %w", auctionID, err)
	}

	winning, ok := auction.WinningBid()
	if !ok {
		return models.Bid{}, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return winning, nil
}

// Tasks exposes both cycles for the scheduler. Reports are logged by the
// cycles themselves.
func (s *Service) Tasks(botInterval, finalizeInterval time.Duration) []scheduler.Task {
	return []scheduler.Task{
		{
			Name:     TaskBotCycle,
			Interval: botInterval,
			Run: func(ctx context.Context) error {
				_, err := s.RunBotCycle(ctx)
				return err
			},
		},
		{
			Name:     TaskFinalizationCycle,
			Interval: finalizeInterval,
			Run: func(ctx context.Context) error {
				_, err := s.RunFinalizationCycle(ctx)
				return err
			},
		},
	}
}
