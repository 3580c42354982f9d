package bidding

import (
	"context"
	"fmt"
	"slices"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// Reason explains the outcome of a single bot invocation
type Reason string

const (
	ReasonPlaced           Reason = "placed"
	ReasonBotCannotBid     Reason = "bot_cannot_bid"
	ReasonNoCandidates     Reason = "no_candidate_auctions"
	ReasonNoAffordable     Reason = "no_affordable_auction"
	ReasonAuctionChanged   Reason = "auction_changed"
	ReasonNoValidIncrement Reason = "no_valid_increment"
)

// Outcome of Engine.Bid. Bid is set only when a bid was placed.
type Outcome struct {
	Reason    Reason
	AuctionID string
	Bid       *model.Bid
}

// Placed reports whether a bid was written
func (o Outcome) Placed() bool {
	return o.Reason == ReasonPlaced
}

// Engine decides whether and how much a bot bids
type Engine struct {
	db                  repository.MarketDB
	rnd                 RandSource
	now                 func() time.Time
	newID               func() string
	defaultMinIncrement int64
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithRand sets the random source used for auction and amount selection
func WithRand(r RandSource) EngineOption {
	return func(e *Engine) { e.rnd = r }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides bid id generation
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) { e.newID = newID }
}

// WithDefaultMinIncrement sets the increment for bots without one
func WithDefaultMinIncrement(inc int64) EngineOption {
	return func(e *Engine) {
		if inc > 0 {
			e.defaultMinIncrement = inc
		}
	}
}

// NewEngine creates a bid engine on top of db
func NewEngine(db repository.MarketDB, opts ...EngineOption) *Engine {
	e := &Engine{
		db:                  db,
		rnd:                 DefaultRand,
		now:                 time.Now,
		newID:               utils.GenerateID,
		defaultMinIncrement: model.DefaultMinIncrement,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bid places at most one bid for bot on one of auctions. No-op conditions
// are reported through Outcome.Reason; only store failures return an error.
func (e *Engine) Bid(ctx context.Context, bot model.Bot, auctions []model.Auction) (Outcome, error) {
	if !bot.CanBid() {
		return Outcome{Reason: ReasonBotCannotBid}, nil
	}
	inc := bot.EffectiveMinIncrement(e.defaultMinIncrement)

	pool := candidatePool(bot, auctions)
	if len(pool) == 0 {
		return Outcome{Reason: ReasonNoCandidates}, nil
	}

	affordable := make([]model.Auction, 0, len(pool))
	for _, a := range pool {
		if eligible(bot, a, inc) {
			affordable = append(affordable, a)
		}
	}
	if len(affordable) == 0 {
		return Outcome{Reason: ReasonNoAffordable}, nil
	}

	picked := affordable[e.rnd.IntN(len(affordable))]

	// Another bot or the finalizer may have touched it since the scan.
	fresh, err := e.db.GetAuction(ctx, picked.ID)
	if err != nil {
		return Outcome{AuctionID: picked.ID}, fmt.Errorf("bidding: re-read auction %s: %w", picked.ID, err)
	}
	if fresh.Status != model.AuctionStatusActive || !eligible(bot, fresh, inc) {
		return Outcome{Reason: ReasonAuctionChanged, AuctionID: picked.ID}, nil
	}

	amount, ok := e.pickAmount(fresh.Price(), inc, bot.Budget())
	if !ok {
		return Outcome{Reason: ReasonNoValidIncrement, AuctionID: picked.ID}, nil
	}

	bid := model.Bid{
		ID:        e.newID(),
		AuctionID: fresh.ID,
		UserID:    bot.ID,
		Username:  bot.Name,
		Amount:    amount,
		CreatedAt: e.now().UTC(),
		IsBot:     true,
	}
	if err := e.db.AppendBid(ctx, fresh.ID, bid); err != nil {
		return Outcome{AuctionID: fresh.ID}, fmt.Errorf("bidding: apply bid of %s on %s: %w", bot.ID, fresh.ID, err)
	}

	return Outcome{Reason: ReasonPlaced, AuctionID: fresh.ID, Bid: &bid}, nil
}

// pickAmount draws a uniform multiple of inc in [price+inc, budget]
func (e *Engine) pickAmount(price, inc, budget int64) (int64, bool) {
	minBid := price + inc
	minMultiples := (minBid + inc - 1) / inc
	maxMultiples := budget / inc
	if minMultiples > maxMultiples {
		return 0, false
	}
	m := minMultiples + int64(e.rnd.IntN(int(maxMultiples-minMultiples+1)))
	return m * inc, true
}

// candidatePool is the active auctions, narrowed to the bot's targets when it has any
func candidatePool(bot model.Bot, auctions []model.Auction) []model.Auction {
	pool := make([]model.Auction, 0, len(auctions))
	for _, a := range auctions {
		if a.Status != model.AuctionStatusActive {
			continue
		}
		if len(bot.TargetAuctionIDs) > 0 && !slices.Contains(bot.TargetAuctionIDs, a.ID) {
			continue
		}
		pool = append(pool, a)
	}
	return pool
}

// eligible applies the exclusion checks: not the bot's own listing, not
// already the latest bidder, and the next increment fits the budget.
func eligible(bot model.Bot, a model.Auction, inc int64) bool {
	if a.CreatedBy == bot.ID {
		return false
	}
	if last, ok := a.LastBid(); ok && last.UserID == bot.ID {
		return false
	}
	next := a.Price() + inc
	return next <= bot.Budget() && bot.Balance >= next
}
