package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Collection names shared with the web front-end.
const (
	CollectionBots          = "bots"
	CollectionAuctions      = "auctions"
	CollectionOrders        = "orders"
	CollectionNotifications = "notifications"
)

// DefaultMinIncrement applies when a bot has no increment configured.
const DefaultMinIncrement int64 = 500

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusScheduled AuctionStatus = "scheduled"
)

// Bot is an autonomous bidder configured by an administrator.
// Money fields are whole currency units.
type Bot struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	IsActive         bool     `json:"isActive"`
	Balance          int64    `json:"balance"`
	MaxBidAmount     int64    `json:"maxBidAmount"`
	MinIncrement     int64    `json:"minIncrement,omitempty"`
	IntervalMin      int64    `json:"intervalMin"`
	IntervalMax      int64    `json:"intervalMax"`
	TargetAuctionIDs []string `json:"targetAuctionIds,omitempty"`
}

// CanBid reports whether the bot may bid at all right now.
func (b Bot) CanBid() bool {
	return b.IsActive && b.Balance > 0 && b.MaxBidAmount > 0
}

// Validate checks the structural invariant of an active bot.
// Inactive bots are always valid.
func (b Bot) Validate() error {
	if !b.IsActive {
		return nil
	}
	switch {
	case b.Balance <= 0:
		return fmt.Errorf("balance must be positive, got %d", b.Balance)
	case b.MaxBidAmount <= 0:
		return fmt.Errorf("maxBidAmount must be positive, got %d", b.MaxBidAmount)
	case b.IntervalMin <= 0:
		return fmt.Errorf("intervalMin must be positive, got %d", b.IntervalMin)
	case b.IntervalMax < b.IntervalMin:
		return fmt.Errorf("intervalMax %d is below intervalMin %d", b.IntervalMax, b.IntervalMin)
	}
	return nil
}

// EffectiveMinIncrement returns the bot increment, or fallback when unset.
func (b Bot) EffectiveMinIncrement(fallback int64) int64 {
	if b.MinIncrement > 0 {
		return b.MinIncrement
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultMinIncrement
}

// Budget is the most the bot can spend on a single bid.
func (b Bot) Budget() int64 {
	return min(b.MaxBidAmount, b.Balance)
}

// Bid is a single immutable bid on an auction
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auctionId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	IsBot     bool      `json:"isBot"`
}

// UnmarshalJSON accepts createdAt as RFC3339 text or epoch milliseconds.
// Any other value leaves it zero.
func (b *Bid) UnmarshalJSON(data []byte) error {
	type plain Bid
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.CreatedAt, _ = parseTimestamp(aux.CreatedAt)
	return nil
}

// BidList holds the bids of an auction in append order.
//
// The store keeps bids as an object keyed by bid id so that concurrent
// appends never overwrite each other. Older records may still carry a JSON
// array; both forms decode.
type BidList []Bid

// MarshalJSON writes the keyed-object form.
func (l BidList) MarshalJSON() ([]byte, error) {
	keyed := make(map[string]Bid, len(l))
	for i, b := range l {
		keyed[bidKey(b, i)] = b
	}
	return json.Marshal(keyed)
}

// UnmarshalJSON accepts an array, a keyed object or null.
func (l *BidList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var list []Bid
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var keyed map[string]Bid
	if err := json.Unmarshal(data, &keyed); err != nil {
		return fmt.Errorf("decode bids: %w", err)
	}

	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keyed[keys[i]], keyed[keys[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return keys[i] < keys[j]
	})

	out := make([]Bid, 0, len(keys))
	for _, k := range keys {
		b := keyed[k]
		if b.ID == "" {
			b.ID = k
		}
		out = append(out, b)
	}
	*l = out
	return nil
}

func bidKey(b Bid, index int) string {
	if b.ID != "" {
		return b.ID
	}
	return strconv.Itoa(index)
}

// Auction is a listing that bots and users bid on
type Auction struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Status        AuctionStatus `json:"status,omitempty"`
	CurrentPrice  *int64        `json:"currentPrice,omitempty"`
	StartingPrice int64         `json:"startingPrice"`
	BuyNowPrice   *int64        `json:"buyNowPrice,omitempty"`
	CreatedBy     string        `json:"createdBy"`
	EndTime       string        `json:"endTime,omitempty"`
	EndedAt       *time.Time    `json:"endedAt,omitempty"`
	ClaimedAt     *time.Time    `json:"finalizationClaimedAt,omitempty"`
	LastBidAt     *time.Time    `json:"lastBidAt,omitempty"`
	WinnerID      string        `json:"winnerId,omitempty"`
	Images        []string      `json:"images,omitempty"`
	Bids          BidList       `json:"bids,omitempty"`
}

// UnmarshalJSON accepts endTime and lastBidAt as RFC3339 text or epoch
// milliseconds. A numeric endTime is rewritten as RFC3339; any other
// non-string value is dropped, which leaves the auction without an end time.
func (a *Auction) UnmarshalJSON(data []byte) error {
	type plain Auction
	aux := struct {
		*plain
		EndTime   json.RawMessage `json:"endTime,omitempty"`
		LastBidAt json.RawMessage `json:"lastBidAt,omitempty"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	a.LastBidAt = nil
	if t, ok := parseTimestamp(aux.LastBidAt); ok {
		a.LastBidAt = &t
	}

	a.EndTime = ""
	var text string
	if err := json.Unmarshal(aux.EndTime, &text); err == nil {
		a.EndTime = text
	} else if t, ok := parseTimestamp(aux.EndTime); ok {
		a.EndTime = t.Format(time.RFC3339)
	}
	return nil
}

// parseTimestamp reads an RFC3339 string or a JSON number of epoch
// milliseconds. Numbers below 1e12 are taken as epoch seconds.
func parseTimestamp(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return time.Time{}, false
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return time.Time{}, false
		}
		v = int64(f)
	}
	if v < 1e12 {
		return time.Unix(v, 0).UTC(), true
	}
	return time.UnixMilli(v).UTC(), true
}

// Price is the current price, falling back to the starting price.
func (a Auction) Price() int64 {
	if a.CurrentPrice != nil {
		return *a.CurrentPrice
	}
	return a.StartingPrice
}

// EndsAt parses EndTime. ok is false when it is missing or unparseable.
func (a Auction) EndsAt() (t time.Time, ok bool) {
	if a.EndTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, a.EndTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Expired reports whether the auction has an end time at or before now.
func (a Auction) Expired(now time.Time) bool {
	end, ok := a.EndsAt()
	return ok && !end.After(now)
}

// LastBid returns the most recently appended bid.
func (a Auction) LastBid() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}
	return a.Bids[len(a.Bids)-1], true
}

// WinningBid returns the highest bid. Ties go to the earliest createdAt,
// then to the earlier position in the bid list.
func (a Auction) WinningBid() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}
	winning := a.Bids[0]
	for _, b := range a.Bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning, true
}

// NeedsWinner reports whether an auction ended by the finalizer (endedAt is
// set) still lacks a winner although it has bids. Auctions ended elsewhere
// carry no endedAt and are never settled here.
func (a Auction) NeedsWinner() bool {
	return a.Status == AuctionStatusEnded && a.EndedAt != nil && a.WinnerID == "" && len(a.Bids) > 0
}

// LastFinalizationTouch is the later of EndedAt and ClaimedAt
func (a Auction) LastFinalizationTouch() *time.Time {
	switch {
	case a.EndedAt == nil:
		return a.ClaimedAt
	case a.ClaimedAt == nil || a.EndedAt.After(*a.ClaimedAt):
		return a.EndedAt
	default:
		return a.ClaimedAt
	}
}

// Normalize fills the defaults the bidding side relies on: missing status is
// active, missing current price is the starting price, missing bids is empty.
func (a Auction) Normalize() Auction {
	if a.Status == "" {
		a.Status = AuctionStatusActive
	}
	if a.CurrentPrice == nil {
		price := a.StartingPrice
		a.CurrentPrice = &price
	}
	if a.Bids == nil {
		a.Bids = BidList{}
	}
	return a
}

// Address is the shipping address of an order, filled in by the buyer later.
type Address struct {
	FullName   string `json:"fullName,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Order types and statuses written by the engine
const (
	OrderTypeAuction          = "auction"
	OrderStatusPendingPayment = "pending_payment"
	DeliveryMethodShipping    = "shipping"
)

// Order is created for the human winner of an auction
type Order struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	ProductImage   string    `json:"productImage"`
	Type           string    `json:"type"`
	Amount         int64     `json:"amount"`
	Status         string    `json:"status"`
	DeliveryMethod string    `json:"deliveryMethod"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	Address        Address   `json:"address"`
}

// NotificationTypeAuctionWon marks winner notifications
const NotificationTypeAuctionWon = "auction_won"

// Notification is an inbox entry for a user
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	Link      string    `json:"link"`
}
