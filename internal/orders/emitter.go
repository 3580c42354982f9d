package orders

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	model "auction-engine/internal/models"
	"auction-engine/utils"
)

// Defaults for emitted records
const (
	DefaultTTL  = 48 * time.Hour
	DefaultLink = "/notifications"
)

// Emitter builds the order and the winner notification for a finalized auction.
// Ids are fresh on every call, so callers must check for an existing order
// before writing.
type Emitter struct {
	ttl   time.Duration
	link  string
	now   func() time.Time
	newID func() string
}

// Option configures an Emitter
type Option func(*Emitter)

// WithTTL sets how long the winner has to pay
func WithTTL(ttl time.Duration) Option {
	return func(e *Emitter) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithLink sets the notification link
func WithLink(link string) Option {
	return func(e *Emitter) {
		if link != "" {
			e.link = link
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) { e.now = now }
}

// WithIDGenerator overrides record id generation
func WithIDGenerator(newID func() string) Option {
	return func(e *Emitter) { e.newID = newID }
}

// NewEmitter creates an Emitter with 48h orders and the default inbox link
func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		ttl:   DefaultTTL,
		link:  DefaultLink,
		now:   time.Now,
		newID: utils.GenerateOrderedID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build returns the pending-payment order and the notification for the winner
func (e *Emitter) Build(auction model.Auction, winning model.Bid) (model.Order, model.Notification) {
	createdAt := e.now().UTC()

	var image string
	if len(auction.Images) > 0 {
		image = auction.Images[0]
	}

	order := model.Order{
		ID:             e.newID(),
		UserID:         winning.UserID,
		UserName:       winning.Username,
		ProductID:      auction.ID,
		ProductName:    auction.Title,
		ProductImage:   image,
		Type:           model.OrderTypeAuction,
		Amount:         winning.Amount,
		Status:         model.OrderStatusPendingPayment,
		DeliveryMethod: model.DeliveryMethodShipping,
		CreatedAt:      createdAt,
		ExpiresAt:      createdAt.Add(e.ttl),
		Address:        model.Address{},
	}

	notification := model.Notification{
		ID:     e.newID(),
		UserID: winning.UserID,
		Type:   model.NotificationTypeAuctionWon,
		Title:  "You won the auction!",
		Message: fmt.Sprintf("Congratulations! You won %q with a bid of %s. Complete payment within %d hours to claim it.",
			auction.Title, humanize.Comma(winning.Amount), int(e.ttl.Hours())),
		Read:      false,
		CreatedAt: createdAt,
		Link:      e.link,
	}

	return order, notification
}
