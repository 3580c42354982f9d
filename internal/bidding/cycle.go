package bidding

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// DefaultMaxConcurrency bounds concurrent engine invocations per cycle
const DefaultMaxConcurrency = 16

// BotCycleReport summarizes one bot cycle
type BotCycleReport struct {
	BotsLoaded     int `json:"botsLoaded"`
	BotsInactive   int `json:"botsInactive"`
	BotsSkipped    int `json:"botsSkipped"`
	AuctionsActive int `json:"auctionsActive"`
	BidsPlaced     int `json:"bidsPlaced"`
	NoOps          int `json:"noOps"`
	Failures       int `json:"failures"`
}

// BotCycle loads bots and live auctions and runs the engine once per bot
type BotCycle struct {
	db             repository.MarketDB
	engine         *Engine
	maxConcurrency int
}

// NewBotCycle creates a bot cycle. maxConcurrency bounds how many bots talk to
// the store at once; bots past the bound start as soon as a slot frees up and
// never wait on each other's outcome. maxConcurrency <= 0 uses the default.
func NewBotCycle(db repository.MarketDB, engine *Engine, maxConcurrency int) *BotCycle {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &BotCycle{db: db, engine: engine, maxConcurrency: maxConcurrency}
}

// Run executes one cycle. Per-bot failures are logged and counted; only
// failing to load bots or auctions returns an error.
func (c *BotCycle) Run(ctx context.Context) (BotCycleReport, error) {
	var report BotCycleReport

	bots, err := c.db.ListBots(ctx)
	if err != nil {
		return report, fmt.Errorf("bot cycle: %w", err)
	}
	report.BotsLoaded = len(bots)

	runnable := make([]model.Bot, 0, len(bots))
	for _, bot := range bots {
		if !bot.IsActive {
			report.BotsInactive++
			continue
		}
		if err := bot.Validate(); err != nil {
			report.BotsSkipped++
			utils.Warn("Skipping misconfigured bot", map[string]any{
				"bot_id": bot.ID,
				"error":  fmt.Errorf("%w: %v", auctionerrors.ErrInvalidBot, err).Error(),
			})
			continue
		}
		runnable = append(runnable, bot)
	}

	auctions, err := c.db.ListAuctions(ctx)
	if err != nil {
		return report, fmt.Errorf("bot cycle: %w", err)
	}
	active := make([]model.Auction, 0, len(auctions))
	for _, a := range auctions {
		if a.Status == model.AuctionStatusActive {
			active = append(active, a)
		}
	}
	report.AuctionsActive = len(active)

	if len(runnable) == 0 || len(active) == 0 {
		utils.Debug("Bot cycle has nothing to do", map[string]any{
			"bots":     len(runnable),
			"auctions": len(active),
		})
		return report, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.maxConcurrency)

	for _, bot := range runnable {
		g.Go(func() error {
			outcome, err := c.engine.Bid(ctx, bot, active)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failures++
				utils.Error("Bot bid failed", map[string]any{
					"bot_id":     bot.ID,
					"auction_id": outcome.AuctionID,
					"error":      err.Error(),
				})
			case outcome.Placed():
				report.BidsPlaced++
				utils.Info("Bot placed bid", map[string]any{
					"bot_id":     bot.ID,
					"auction_id": outcome.AuctionID,
					"amount":     outcome.Bid.Amount,
				})
			default:
				report.NoOps++
				utils.Debug("Bot did not bid", map[string]any{
					"bot_id": bot.ID,
					"reason": string(outcome.Reason),
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	utils.Info("Bot cycle finished", map[string]any{
		"bots_loaded":     report.BotsLoaded,
		"bots_inactive":   report.BotsInactive,
		"bots_skipped":    report.BotsSkipped,
		"auctions_active": report.AuctionsActive,
		"bids_placed":     report.BidsPlaced,
		"no_ops":          report.NoOps,
		"failures":        report.Failures,
	})
	return report, nil
}
