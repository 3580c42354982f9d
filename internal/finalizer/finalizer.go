package finalizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	model "auction-engine/internal/models"
	"auction-engine/internal/orders"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Defaults
const (
	DefaultMaxConcurrency = 8
	DefaultRepairGrace    = time.Minute
)

// Result is the outcome of finalizing one auction
type Result string

const (
	// ResultSkipped means another run ended the auction, or it is no longer due.
	ResultSkipped Result = "skipped"
	// ResultAlreadyFinalized means a winner was already recorded.
	ResultAlreadyFinalized Result = "already_finalized"
	ResultUnsold           Result = "unsold"
	ResultBotWinner        Result = "bot_winner"
	ResultOrderCreated     Result = "order_created"
	// ResultRepaired means an order from an earlier run was found and only the winner was missing.
	ResultRepaired Result = "repaired"
)

// FinalizationReport summarizes one finalization cycle
type FinalizationReport struct {
	Candidates    int `json:"candidates"`
	Ended         int `json:"ended"`
	Unsold        int `json:"unsold"`
	BotWinners    int `json:"botWinners"`
	OrdersCreated int `json:"ordersCreated"`
	Repaired      int `json:"repaired"`
	Skipped       int `json:"skipped"`
	Failures      int `json:"failures"`
}

// Finalizer ends expired auctions and settles their winners
type Finalizer struct {
	db             repository.MarketDB
	emitter        *orders.Emitter
	now            func() time.Time
	maxConcurrency int
	repairGrace    time.Duration
}

// Option configures a Finalizer
type Option func(*Finalizer)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(f *Finalizer) { f.now = now }
}

// WithMaxConcurrency bounds concurrently finalized auctions
func WithMaxConcurrency(n int) Option {
	return func(f *Finalizer) {
		if n > 0 {
			f.maxConcurrency = n
		}
	}
}

// WithRepairGrace sets how long an ended auction without a winner is left
// alone before a later run picks it up.
func WithRepairGrace(d time.Duration) Option {
	return func(f *Finalizer) {
		if d >= 0 {
			f.repairGrace = d
		}
	}
}

// New creates a Finalizer
func New(db repository.MarketDB, emitter *orders.Emitter, opts ...Option) *Finalizer {
	f := &Finalizer{
		db:             db,
		emitter:        emitter,
		now:            time.Now,
		maxConcurrency: DefaultMaxConcurrency,
		repairGrace:    DefaultRepairGrace,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run finalizes every expired active auction and resumes ended auctions
// left without a winner by an interrupted run. Per-auction failures are
// logged and counted; only the initial scan returns an error.
func (f *Finalizer) Run(ctx context.Context) (FinalizationReport, error) {
	var report FinalizationReport

	auctions, err := f.db.ListAuctions(ctx)
	if err != nil {
		return report, fmt.Errorf("finalizer: %w", err)
	}
	now := f.now()

	type job struct {
		auctionID string
		repair    bool
	}
	var jobs []job
	for _, a := range auctions {
		switch {
		case a.Status == model.AuctionStatusActive && a.Expired(now):
			jobs = append(jobs, job{auctionID: a.ID})
		case a.NeedsWinner():
			if last := a.LastFinalizationTouch(); last != nil && now.Sub(*last) >= f.repairGrace {
				jobs = append(jobs, job{auctionID: a.ID, repair: true})
			}
		}
	}
	report.Candidates = len(jobs)
	if len(jobs) == 0 {
		return report, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(f.maxConcurrency)

	for _, j := range jobs {
		g.Go(func() error {
			var (
				result Result
				ended  bool
				err    error
			)
			if j.repair {
				result, err = f.Repair(ctx, j.auctionID, now)
			} else {
				result, ended, err = f.finalize(ctx, j.auctionID, now)
			}

			mu.Lock()
			defer mu.Unlock()
			if ended {
				report.Ended++
			}
			if err != nil {
				report.Failures++
				utils.Error("Auction finalization failed", map[string]any{
					"auction_id": j.auctionID,
					"repair":     j.repair,
					"error":      err.Error(),
				})
				return nil
			}
			report.count(result)
			return nil
		})
	}
	_ = g.Wait()

	utils.Info("Finalization cycle finished", map[string]any{
		"candidates":     report.Candidates,
		"ended":          report.Ended,
		"unsold":         report.Unsold,
		"bot_winners":    report.BotWinners,
		"orders_created": report.OrdersCreated,
		"repaired":       report.Repaired,
		"skipped":        report.Skipped,
		"failures":       report.Failures,
	})
	return report, nil
}

func (r *FinalizationReport) count(result Result) {
	switch result {
	case ResultUnsold:
		r.Unsold++
	case ResultBotWinner:
		r.BotWinners++
	case ResultOrderCreated:
		r.OrdersCreated++
	case ResultRepaired:
		r.Repaired++
	default:
		r.Skipped++
	}
}

// FinalizeAuction ends one auction if it is due at now and settles its winner
func (f *Finalizer) FinalizeAuction(ctx context.Context, auctionID string, now time.Time) (Result, error) {
	result, _, err := f.finalize(ctx, auctionID, now)
	return result, err
}

func (f *Finalizer) finalize(ctx context.Context, auctionID string, now time.Time) (Result, bool, error) {
	ended, err := f.db.EndAuction(ctx, auctionID, now)
	if err != nil {
		return "", false, fmt.Errorf("finalizer: %w", err)
	}
	if !ended {
		return ResultSkipped, false, nil
	}
	utils.Info("Auction ended", map[string]any{"auction_id": auctionID})

	result, err := f.settle(ctx, auctionID)
	return result, true, err
}

// Repair claims an ended auction that still has no winner and settles it
func (f *Finalizer) Repair(ctx context.Context, auctionID string, now time.Time) (Result, error) {
	claimed, err := f.db.ClaimRepair(ctx, auctionID, now, f.repairGrace)
	if err != nil {
		return "", fmt.Errorf("finalizer: %w", err)
	}
	if !claimed {
		return ResultSkipped, nil
	}
	utils.Warn("Resuming interrupted finalization", map[string]any{"auction_id": auctionID})
	return f.settle(ctx, auctionID)
}

// settle picks the winner of an ended auction and emits its side effects.
// The order is looked up before it is created and written before winnerId,
// so an interrupted run is resumed without a second order.
func (f *Finalizer) settle(ctx context.Context, auctionID string) (Result, error) {
	auction, err := f.db.GetAuction(ctx, auctionID)
	if err != nil {
		return "", fmt.Errorf("finalizer: %w", err)
	}
	if auction.WinnerID != "" {
		return ResultAlreadyFinalized, nil
	}

	winning, ok := auction.WinningBid()
	if !ok {
		utils.Info("Auction ended unsold", map[string]any{"auction_id": auctionID})
		return ResultUnsold, nil
	}

	isBot := winning.IsBot
	if !isBot {
		// Bids written before isBot existed carry no flag.
		if isBot, err = f.db.IsBotAccount(ctx, winning.UserID); err != nil {
			return "", fmt.Errorf("finalizer: %w", err)
		}
	}
	if isBot {
		return f.setWinner(ctx, auctionID, winning.UserID, ResultBotWinner)
	}

	existing, err := f.db.FindAuctionOrder(ctx, auctionID, winning.UserID)
	if err != nil {
		return "", fmt.Errorf("finalizer: %w", err)
	}
	if existing != nil {
		utils.Warn("Order already exists, recording missing winner", map[string]any{
			"auction_id": auctionID,
			"winner_id":  winning.UserID,
			"order_id":   existing.ID,
		})
		return f.setWinner(ctx, auctionID, winning.UserID, ResultRepaired)
	}

	order, notification := f.emitter.Build(auction, winning)
	if err := f.db.CreateOrder(ctx, order); err != nil {
		return "", fmt.Errorf("finalizer: %w", err)
	}
	if err := f.db.CreateNotification(ctx, notification); err != nil {
		// Notifications are not retried.
		utils.Error("Winner notification failed", map[string]any{
			"auction_id": auctionID,
			"winner_id":  winning.UserID,
			"error":      err.Error(),
		})
	}

	result, err := f.setWinner(ctx, auctionID, winning.UserID, ResultOrderCreated)
	if err != nil {
		return "", err
	}
	utils.Info("Order created for auction winner", map[string]any{
		"auction_id": auctionID,
		"winner_id":  winning.UserID,
		"order_id":   order.ID,
		"amount":     order.Amount,
	})
	return result, nil
}

func (f *Finalizer) setWinner(ctx context.Context, auctionID, winnerID string, result Result) (Result, error) {
	set, err := f.db.SetWinner(ctx, auctionID, winnerID)
	if err != nil {
		return "", fmt.Errorf("finalizer: %w", err)
	}
	if !set {
		return ResultAlreadyFinalized, nil
	}
	utils.Info("Auction winner recorded", map[string]any{
		"auction_id": auctionID,
		"winner_id":  winnerID,
		"result":     string(result),
	})
	return result, nil
}
