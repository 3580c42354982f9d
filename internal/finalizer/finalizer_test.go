package finalizer

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	model "auction-engine/internal/models"
	"auction-engine/internal/orders"
	"auction-engine/internal/repository"
	"auction-engine/internal/store"
)

var testNow = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

type fixture struct {
	store *store.MemoryStore
	repo  *repository.DocRepo
}

func newFixture(t *testing.T, auctions ...model.Auction) fixture {
	t.Helper()
	s := store.NewMemoryStore()
	repo := repository.NewDocRepo(s)
	for _, a := range auctions {
		require.NoError(t, repo.PutAuction(context.Background(), a))
	}
	return fixture{store: s, repo: repo}
}

func (fx fixture) orders(t *testing.T) []model.Order {
	t.Helper()
	docs, err := fx.store.GetAll(context.Background(), model.CollectionOrders)
	require.NoError(t, err)
	out := make([]model.Order, 0, len(docs))
	for _, doc := range docs {
		var o model.Order
		require.NoError(t, json.Unmarshal(doc, &o))
		out = append(out, o)
	}
	return out
}

func (fx fixture) notifications(t *testing.T) []model.Notification {
	t.Helper()
	docs, err := fx.store.GetAll(context.Background(), model.CollectionNotifications)
	require.NoError(t, err)
	out := make([]model.Notification, 0, len(docs))
	for _, doc := range docs {
		var n model.Notification
		require.NoError(t, json.Unmarshal(doc, &n))
		out = append(out, n)
	}
	return out
}

func (fx fixture) auction(t *testing.T, id string) model.Auction {
	t.Helper()
	a, err := fx.repo.GetAuction(context.Background(), id)
	require.NoError(t, err)
	return a
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newFinalizer(db repository.MarketDB, now time.Time) *Finalizer {
	return New(db, orders.NewEmitter(orders.WithClock(clockAt(now))), WithClock(clockAt(now)))
}

func expired(id string, bids ...model.Bid) model.Auction {
	return model.Auction{
		ID:            id,
		Title:         "Item " + id,
		Status:        model.AuctionStatusActive,
		StartingPrice: 1000,
		CreatedBy:     "admin",
		EndTime:       testNow.Add(-5 * time.Minute).Format(time.RFC3339),
		Images:        []string{id + ".jpg"},
		Bids:          bids,
	}
}

func bid(id, userID string, amount int64, offset time.Duration, isBot bool) model.Bid {
	return model.Bid{ID: id, UserID: userID, Username: userID, Amount: amount, CreatedAt: testNow.Add(-time.Hour + offset), IsBot: isBot}
}

func TestFinalizer_Run_BotWinnerGetsNoOrder(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, expired("A2",
		bid("b1", "u1", 5000, 0, false),
		bid("b2", "bot-7", 7000, time.Minute, true),
	))

	report, err := newFinalizer(fx.repo, testNow).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Ended: 1, BotWinners: 1}, report)

	a := fx.auction(t, "A2")
	require.Equal(t, model.AuctionStatusEnded, a.Status)
	require.Equal(t, "bot-7", a.WinnerID)
	require.Empty(t, fx.orders(t))
	require.Empty(t, fx.notifications(t))
}

func TestFinalizer_Run_UnflaggedBotBidStillCountsAsBot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t, expired("A2",
		bid("b1", "u1", 5000, 0, false),
		bid("b2", "bot-7", 7000, time.Minute, false),
	))
	require.NoError(t, fx.repo.PutBot(ctx, model.Bot{ID: "bot-7", Name: "Seven", IsActive: true}))

	report, err := newFinalizer(fx.repo, testNow).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Ended: 1, BotWinners: 1}, report)
	require.Equal(t, "bot-7", fx.auction(t, "A2").WinnerID)
	require.Empty(t, fx.orders(t))
	require.Empty(t, fx.notifications(t))
}

func TestFinalizer_Run_LeavesAuctionsEndedElsewhere(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t)
	doc := `{"title":"Desk","status":"ended","startingPrice":500,"createdBy":"admin","bids":{"b1":{"userId":"u9","amount":900}}}`
	require.NoError(t, fx.store.Set(ctx, model.CollectionAuctions, "L1", json.RawMessage(doc)))

	for _, at := range []time.Time{testNow, testNow.Add(24 * time.Hour)} {
		report, err := newFinalizer(fx.repo, at).Run(ctx)
		require.NoError(t, err)
		require.Zero(t, report.Candidates)
	}

	require.Empty(t, fx.orders(t))
	require.Empty(t, fx.notifications(t))
	require.Empty(t, fx.auction(t, "L1").WinnerID)

	result, err := newFinalizer(fx.repo, testNow).Repair(ctx, "L1", testNow)
	require.NoError(t, err)
	require.Equal(t, ResultSkipped, result)
	require.Empty(t, fx.orders(t))
}

func TestFinalizer_Run_EpochEndTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t)
	doc := `{"title":"Clock","status":"active","startingPrice":500,"createdBy":"admin","endTime":` +
		strconv.FormatInt(testNow.Add(-time.Minute).UnixMilli(), 10) +
		`,"bids":[{"id":"b1","userId":"u8","amount":800,"createdAt":` + strconv.FormatInt(testNow.Add(-time.Hour).UnixMilli(), 10) + `}]}`
	require.NoError(t, fx.store.Set(ctx, model.CollectionAuctions, "T1", json.RawMessage(doc)))

	report, err := newFinalizer(fx.repo, testNow).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Ended: 1, OrdersCreated: 1}, report)
	require.Equal(t, "u8", fx.auction(t, "T1").WinnerID)
}

func TestFinalizer_Run_HumanWinnerGetsOrderAndNotification(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, expired("A3", bid("b1", "u2", 9000, 0, false)))

	report, err := newFinalizer(fx.repo, testNow).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Ended: 1, OrdersCreated: 1}, report)

	a := fx.auction(t, "A3")
	require.Equal(t, model.AuctionStatusEnded, a.Status)
	require.Equal(t, "u2", a.WinnerID)

	all := fx.orders(t)
	require.Len(t, all, 1)
	order := all[0]
	require.Equal(t, int64(9000), order.Amount)
	require.Equal(t, "u2", order.UserID)
	require.Equal(t, "A3", order.ProductID)
	require.Equal(t, "Item A3", order.ProductName)
	require.Equal(t, "A3.jpg", order.ProductImage)
	require.Equal(t, model.OrderTypeAuction, order.Type)
	require.Equal(t, model.OrderStatusPendingPayment, order.Status)
	require.Equal(t, 48*time.Hour, order.ExpiresAt.Sub(order.CreatedAt))

	notes := fx.notifications(t)
	require.Len(t, notes, 1)
	require.Equal(t, "u2", notes[0].UserID)
	require.Equal(t, model.NotificationTypeAuctionWon, notes[0].Type)
	require.False(t, notes[0].Read)
}

func TestFinalizer_Run_UnsoldAuction(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, expired("A4"))

	report, err := newFinalizer(fx.repo, testNow).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Ended: 1, Unsold: 1}, report)

	a := fx.auction(t, "A4")
	require.Equal(t, model.AuctionStatusEnded, a.Status)
	require.Empty(t, a.WinnerID)
	require.Empty(t, fx.orders(t))

	// Unsold auctions are never picked up again.
	report, err = newFinalizer(fx.repo, testNow.Add(time.Hour)).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.Candidates)
}

func TestFinalizer_Run_IgnoresAuctionsNotDue(t *testing.T) {
	t.Parallel()

	future := expired("F1", bid("b1", "u1", 2000, 0, false))
	future.EndTime = testNow.Add(time.Hour).Format(time.RFC3339)
	noEnd := expired("F2")
	noEnd.EndTime = ""
	garbled := expired("F3")
	garbled.EndTime = "next friday"
	scheduled := expired("F4")
	scheduled.Status = model.AuctionStatusScheduled

	fx := newFixture(t, future, noEnd, garbled, scheduled)

	report, err := newFinalizer(fx.repo, testNow).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{}, report)

	for _, id := range []string{"F1", "F2", "F3"} {
		require.Equal(t, model.AuctionStatusActive, fx.auction(t, id).Status)
	}
	require.Equal(t, model.AuctionStatusScheduled, fx.auction(t, "F4").Status)
}

func TestFinalizer_Run_TieGoesToEarliestBid(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, expired("T1",
		bid("late", "u-late", 8000, 2*time.Minute, false),
		bid("early", "u-early", 8000, time.Minute, false),
		bid("low", "u-low", 3000, 0, false),
	))

	_, err := newFinalizer(fx.repo, testNow).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u-early", fx.auction(t, "T1").WinnerID)
}

func TestFinalizer_ConcurrentRunsTransitionOnce(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, expired("C1", bid("b1", "u9", 4000, 0, false)))

	const runs = 12
	var (
		wg      sync.WaitGroup
		ended   atomic.Int32
		created atomic.Int32
	)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := newFinalizer(fx.repo, testNow).Run(context.Background())
			require.NoError(t, err)
			ended.Add(int32(report.Ended))
			created.Add(int32(report.OrdersCreated))
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), ended.Load())
	require.Equal(t, int32(1), created.Load())
	require.Len(t, fx.orders(t), 1)
	require.Len(t, fx.notifications(t), 1)
	require.Equal(t, "u9", fx.auction(t, "C1").WinnerID)
}

// flakyDB fails selected writes a fixed number of times
type flakyDB struct {
	*repository.DocRepo
	setWinnerFailures    atomic.Int32
	createOrderFailures  atomic.Int32
	notificationFailures atomic.Int32
}

var errInjected = errors.New("injected store failure")

func (f *flakyDB) SetWinner(ctx context.Context, auctionID, winnerID string) (bool, error) {
	if f.setWinnerFailures.Add(-1) >= 0 {
		return false, errInjected
	}
	return f.DocRepo.SetWinner(ctx, auctionID, winnerID)
}

func (f *flakyDB) CreateOrder(ctx context.Context, order model.Order) error {
	if f.createOrderFailures.Add(-1) >= 0 {
		return errInjected
	}
	return f.DocRepo.CreateOrder(ctx, order)
}

func (f *flakyDB) CreateNotification(ctx context.Context, n model.Notification) error {
	if f.notificationFailures.Add(-1) >= 0 {
		return errInjected
	}
	return f.DocRepo.CreateNotification(ctx, n)
}

func TestFinalizer_RetryAfterLostWinnerWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t, expired("R1", bid("b1", "u3", 6000, 0, false)))
	db := &flakyDB{DocRepo: fx.repo}
	db.setWinnerFailures.Store(1)

	report, err := newFinalizer(db, testNow).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Ended: 1, Failures: 1}, report)
	require.Len(t, fx.orders(t), 1)
	require.Empty(t, fx.auction(t, "R1").WinnerID)

	// Within the grace period the half-finished auction is left alone.
	report, err = newFinalizer(db, testNow.Add(30*time.Second)).Run(ctx)
	require.NoError(t, err)
	require.Zero(t, report.Candidates)

	report, err = newFinalizer(db, testNow.Add(2*time.Minute)).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Repaired: 1}, report)

	require.Len(t, fx.orders(t), 1, "retry must not create a second order")
	require.Len(t, fx.notifications(t), 1)
	require.Equal(t, "u3", fx.auction(t, "R1").WinnerID)

	report, err = newFinalizer(db, testNow.Add(time.Hour)).Run(ctx)
	require.NoError(t, err)
	require.Zero(t, report.Candidates)
}

func TestFinalizer_RetryAfterFailedOrderWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t, expired("R2", bid("b1", "u4", 6500, 0, false)))
	db := &flakyDB{DocRepo: fx.repo}
	db.createOrderFailures.Store(1)

	report, err := newFinalizer(db, testNow).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Failures)
	require.Empty(t, fx.orders(t))
	a := fx.auction(t, "R2")
	require.Equal(t, model.AuctionStatusEnded, a.Status)
	require.Empty(t, a.WinnerID, "winner is only recorded after the order exists")

	report, err = newFinalizer(db, testNow.Add(5*time.Minute)).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, OrdersCreated: 1}, report)
	require.Len(t, fx.orders(t), 1)
	require.Equal(t, "u4", fx.auction(t, "R2").WinnerID)
}

func TestFinalizer_NotificationFailureStillSetsWinner(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, expired("N1", bid("b1", "u5", 3000, 0, false)))
	db := &flakyDB{DocRepo: fx.repo}
	db.notificationFailures.Store(1)

	report, err := newFinalizer(db, testNow).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 1, Ended: 1, OrdersCreated: 1}, report)
	require.Len(t, fx.orders(t), 1)
	require.Empty(t, fx.notifications(t))
	require.Equal(t, "u5", fx.auction(t, "N1").WinnerID)
}

func TestFinalizer_FinalizeAuction_Sequential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fx := newFixture(t, expired("S1", bid("b1", "u6", 1500, 0, false)))
	f := newFinalizer(fx.repo, testNow)

	result, err := f.FinalizeAuction(ctx, "S1", testNow)
	require.NoError(t, err)
	require.Equal(t, ResultOrderCreated, result)

	result, err = f.FinalizeAuction(ctx, "S1", testNow)
	require.NoError(t, err)
	require.Equal(t, ResultSkipped, result)

	result, err = f.Repair(ctx, "S1", testNow.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, ResultSkipped, result, "an auction with a winner is never claimed")

	require.Len(t, fx.orders(t), 1)
}

func TestFinalizer_Run_ListError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("unavailable")
	db := repository.NewMockMarketDB(ctrl)
	db.EXPECT().ListAuctions(gomock.Any()).Return(nil, boom)

	_, err := newFinalizer(db, testNow).Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestFinalizer_Run_EndFailureContinues(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := expired("E1").Normalize()
	second := expired("E2").Normalize()
	db := repository.NewMockMarketDB(ctrl)
	db.EXPECT().ListAuctions(gomock.Any()).Return([]model.Auction{first, second}, nil)
	db.EXPECT().EndAuction(gomock.Any(), "E1", testNow).Return(false, errors.New("timeout"))
	db.EXPECT().EndAuction(gomock.Any(), "E2", testNow).Return(true, nil)
	ended := second
	ended.Status = model.AuctionStatusEnded
	db.EXPECT().GetAuction(gomock.Any(), "E2").Return(ended, nil)

	report, err := newFinalizer(db, testNow).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, FinalizationReport{Candidates: 2, Ended: 1, Unsold: 1, Failures: 1}, report)
}
