package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/store"
	"auction-engine/utils"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// MarketDB defines typed access to the auction marketplace records
type MarketDB interface {
	ListBots(ctx context.Context) ([]model.Bot, error)
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	AppendBid(ctx context.Context, auctionID string, bid model.Bid) error
	EndAuction(ctx context.Context, auctionID string, now time.Time) (bool, error)
	SetWinner(ctx context.Context, auctionID, winnerID string) (bool, error)
	ClaimRepair(ctx context.Context, auctionID string, now time.Time, grace time.Duration) (bool, error)
	IsBotAccount(ctx context.Context, userID string) (bool, error)
	FindAuctionOrder(ctx context.Context, auctionID, userID string) (*model.Order, error)
	CreateOrder(ctx context.Context, order model.Order) error
	CreateNotification(ctx context.Context, notification model.Notification) error
}

// DocRepo implements MarketDB on top of a document store.
// Writes to existing records only touch the fields they own, so fields
// maintained by the web front-end survive.
type DocRepo struct {
	store store.Store
}

// NewDocRepo creates a repository backed by s
func NewDocRepo(s store.Store) *DocRepo {
	return &DocRepo{store: s}
}

// ListBots returns every decodable bot ordered by id
func (r *DocRepo) ListBots(ctx context.Context) ([]model.Bot, error) {
	docs, err := r.store.GetAll(ctx, model.CollectionBots)
	if err != nil {
		return nil, fmt.Errorf("repository: list bots: %w", err)
	}

	bots := make([]model.Bot, 0, len(docs))
	for id, doc := range docs {
		var bot model.Bot
		if err := json.Unmarshal(doc, &bot); err != nil {
			utils.Warn("Skipping undecodable bot record", map[string]any{"bot_id": id, "error": err.Error()})
			continue
		}
		if bot.ID == "" {
			bot.ID = id
		}
		bots = append(bots, bot)
	}

	sort.Slice(bots, func(i, j int) bool { return bots[i].ID < bots[j].ID })
	return bots, nil
}

// ListAuctions returns every decodable auction, normalized, ordered by id
func (r *DocRepo) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	docs, err := r.store.GetAll(ctx, model.CollectionAuctions)
	if err != nil {
		return nil, fmt.Errorf("repository: list auctions: %w", err)
	}

	auctions := make([]model.Auction, 0, len(docs))
	for id, doc := range docs {
		auction, err := decodeAuction(id, doc)
		if err != nil {
			utils.Warn("Skipping undecodable auction record", map[string]any{"auction_id": id, "error": err.Error()})
			continue
		}
		auctions = append(auctions, auction)
	}

	sort.Slice(auctions, func(i, j int) bool { return auctions[i].ID < auctions[j].ID })
	return auctions, nil
}

// GetAuction returns a single normalized auction
func (r *DocRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	doc, err := r.store.Get(ctx, model.CollectionAuctions, auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("repository: get auction %s: %w", auctionID, err)
	}
	if doc == nil {
		return model.Auction{}, fmt.Errorf("repository: get auction %s: %w", auctionID, auctionerrors.ErrNotFound)
	}

	auction, err := decodeAuction(auctionID, doc)
	if err != nil {
		return model.Auction{}, fmt.Errorf("repository: get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// AppendBid appends bid and raises the price atomically. Keyed bid lists get
// a new key in one multi-field write. Legacy array lists are appended inside a
// transaction so the next index is read and written together.
func (r *DocRepo) AppendBid(ctx context.Context, auctionID string, bid model.Bid) error {
	doc, err := r.store.Get(ctx, model.CollectionAuctions, auctionID)
	if err != nil {
		return fmt.Errorf("repository: append bid to %s: %w", auctionID, err)
	}
	if doc == nil {
		return fmt.Errorf("repository: append bid to %s: %w", auctionID, auctionerrors.ErrNotFound)
	}

	if _, isArray := arrayBidCount(doc); isArray {
		return r.appendArrayBid(ctx, auctionID, bid)
	}

	updates := map[string]any{
		store.Path(model.CollectionAuctions, auctionID, "currentPrice"): bid.Amount,
		store.Path(model.CollectionAuctions, auctionID, "lastBidAt"):    bid.CreatedAt,
		store.Path(model.CollectionAuctions, auctionID, "bids", bid.ID): bid,
	}
	if err := r.store.MultiUpdate(ctx, updates); err != nil {
		return fmt.Errorf("repository: append bid to %s: %w", auctionID, err)
	}
	return nil
}

func (r *DocRepo) appendArrayBid(ctx context.Context, auctionID string, bid model.Bid) error {
	var (
		missing  bool
		applyErr error
	)
	_, _, err := r.store.TransactionalUpdate(ctx, model.CollectionAuctions, auctionID, func(current json.RawMessage) (json.RawMessage, bool) {
		missing, applyErr = false, nil
		if current == nil {
			missing = true
			return nil, false
		}

		key := bid.ID
		if n, isArray := arrayBidCount(current); isArray {
			key = fmt.Sprint(n)
		}
		writes := []struct {
			fields []string
			value  any
		}{
			{fields: []string{"currentPrice"}, value: bid.Amount},
			{fields: []string{"lastBidAt"}, value: bid.CreatedAt},
			{fields: []string{"bids", key}, value: bid},
		}

		next := current
		for _, w := range writes {
			if next, applyErr = store.Apply(next, w.fields, w.value); applyErr != nil {
				return nil, false
			}
		}
		return next, true
	})
	switch {
	case err != nil:
		return fmt.Errorf("repository: append bid to %s: %w", auctionID, err)
	case missing:
		return fmt.Errorf("repository: append bid to %s: %w", auctionID, auctionerrors.ErrNotFound)
	case applyErr != nil:
		return fmt.Errorf("repository: append bid to %s: %w", auctionID, applyErr)
	}
	return nil
}

// EndAuction is the only place an auction moves from active to ended. It
// commits only when the stored auction is still active and its end time has
// passed at now; otherwise it reports false and leaves the record untouched.
func (r *DocRepo) EndAuction(ctx context.Context, auctionID string, now time.Time) (bool, error) {
	committed, _, err := r.store.TransactionalUpdate(ctx, model.CollectionAuctions, auctionID, func(current json.RawMessage) (json.RawMessage, bool) {
		if current == nil {
			return nil, false
		}
		auction, err := decodeAuction(auctionID, current)
		if err != nil || auction.Status != model.AuctionStatusActive || !auction.Expired(now) {
			return nil, false
		}

		next, err := store.Apply(current, []string{"status"}, model.AuctionStatusEnded)
		if err != nil {
			return nil, false
		}
		if next, err = store.Apply(next, []string{"endedAt"}, now.UTC()); err != nil {
			return nil, false
		}
		return next, true
	})
	if err != nil {
		return false, fmt.Errorf("repository: end auction %s: %w", auctionID, err)
	}
	return committed, nil
}

// SetWinner records the winner unless one is already set
func (r *DocRepo) SetWinner(ctx context.Context, auctionID, winnerID string) (bool, error) {
	committed, _, err := r.store.TransactionalUpdate(ctx, model.CollectionAuctions, auctionID, func(current json.RawMessage) (json.RawMessage, bool) {
		if current == nil {
			return nil, false
		}
		auction, err := decodeAuction(auctionID, current)
		if err != nil || auction.WinnerID != "" {
			return nil, false
		}

		next, err := store.Apply(current, []string{"winnerId"}, winnerID)
		if err != nil {
			return nil, false
		}
		return next, true
	})
	if err != nil {
		return false, fmt.Errorf("repository: set winner of %s: %w", auctionID, err)
	}
	return committed, nil
}

// ClaimRepair marks an ended auction that still lacks a winner as being
// finalized by the caller. It commits only when nobody ended or claimed it
// within grace, so overlapping runs never repair the same auction together.
func (r *DocRepo) ClaimRepair(ctx context.Context, auctionID string, now time.Time, grace time.Duration) (bool, error) {
	committed, _, err := r.store.TransactionalUpdate(ctx, model.CollectionAuctions, auctionID, func(current json.RawMessage) (json.RawMessage, bool) {
		if current == nil {
			return nil, false
		}
		auction, err := decodeAuction(auctionID, current)
		if err != nil || !auction.NeedsWinner() {
			return nil, false
		}
		if last := auction.LastFinalizationTouch(); last != nil && now.Sub(*last) < grace {
			return nil, false
		}

		next, err := store.Apply(current, []string{"finalizationClaimedAt"}, now.UTC())
		if err != nil {
			return nil, false
		}
		return next, true
	})
	if err != nil {
		return false, fmt.Errorf("repository: claim repair of %s: %w", auctionID, err)
	}
	return committed, nil
}

// IsBotAccount reports whether userID is the key of a record in the bots
// collection.
func (r *DocRepo) IsBotAccount(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	doc, err := r.store.Get(ctx, model.CollectionBots, userID)
	if err != nil {
		return false, fmt.Errorf("repository: look up bot %s: %w", userID, err)
	}
	return doc != nil, nil
}

// FindAuctionOrder returns the auction order of userID for auctionID, or nil
func (r *DocRepo) FindAuctionOrder(ctx context.Context, auctionID, userID string) (*model.Order, error) {
	docs, err := r.store.GetAll(ctx, model.CollectionOrders)
	if err != nil {
		return nil, fmt.Errorf("repository: find order for %s/%s: %w", auctionID, userID, err)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var order model.Order
		if err := json.Unmarshal(docs[id], &order); err != nil {
			utils.Warn("Skipping undecodable order record", map[string]any{"order_id": id, "error": err.Error()})
			continue
		}
		if order.Type == model.OrderTypeAuction && order.ProductID == auctionID && order.UserID == userID {
			if order.ID == "" {
				order.ID = id
			}
			return &order, nil
		}
	}
	return nil, nil
}

// CreateOrder writes a new order record
func (r *DocRepo) CreateOrder(ctx context.Context, order model.Order) error {
	if err := r.store.Set(ctx, model.CollectionOrders, order.ID, order); err != nil {
		return fmt.Errorf("repository: create order %s: %w", order.ID, err)
	}
	return nil
}

// CreateNotification writes a new notification record
func (r *DocRepo) CreateNotification(ctx context.Context, notification model.Notification) error {
	if err := r.store.Set(ctx, model.CollectionNotifications, notification.ID, notification); err != nil {
		return fmt.Errorf("repository: create notification %s: %w", notification.ID, err)
	}
	return nil
}

// PutBot replaces a bot record
func (r *DocRepo) PutBot(ctx context.Context, bot model.Bot) error {
	if err := r.store.Set(ctx, model.CollectionBots, bot.ID, bot); err != nil {
		return fmt.Errorf("repository: put bot %s: %w", bot.ID, err)
	}
	return nil
}

// PutAuction replaces an auction record
func (r *DocRepo) PutAuction(ctx context.Context, auction model.Auction) error {
	if err := r.store.Set(ctx, model.CollectionAuctions, auction.ID, auction); err != nil {
		return fmt.Errorf("repository: put auction %s: %w", auction.ID, err)
	}
	return nil
}

// SeedData is the layout of a seed file. Records are written as given so
// front-end fields are kept.
type SeedData struct {
	Bots     map[string]json.RawMessage `json:"bots"`
	Auctions map[string]json.RawMessage `json:"auctions"`
}

// Seed loads bots and auctions from a JSON seed document
func (r *DocRepo) Seed(ctx context.Context, src io.Reader) (int, error) {
	var data SeedData
	if err := json.NewDecoder(src).Decode(&data); err != nil {
		return 0, fmt.Errorf("repository: decode seed: %w", err)
	}

	written := 0
	collections := []struct {
		name string
		docs map[string]json.RawMessage
	}{
		{name: model.CollectionBots, docs: data.Bots},
		{name: model.CollectionAuctions, docs: data.Auctions},
	}
	for _, c := range collections {
		for id, doc := range c.docs {
			if err := r.store.Set(ctx, c.name, id, doc); err != nil {
				return written, fmt.Errorf("repository: seed %s/%s: %w", c.name, id, err)
			}
			written++
		}
	}
	return written, nil
}

func decodeAuction(id string, doc json.RawMessage) (model.Auction, error) {
	var auction model.Auction
	if err := json.Unmarshal(doc, &auction); err != nil {
		return model.Auction{}, err
	}
	if auction.ID == "" {
		auction.ID = id
	}
	return auction.Normalize(), nil
}

// arrayBidCount reports the length of the bids field when it is a JSON array
func arrayBidCount(doc json.RawMessage) (int, bool) {
	var shape struct {
		Bids json.RawMessage `json:"bids"`
	}
	if err := json.Unmarshal(doc, &shape); err != nil || string(shape.Bids) == "null" {
		return 0, false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(shape.Bids, &list); err != nil {
		return 0, false
	}
	return len(list), true
}
