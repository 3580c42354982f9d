package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/bidding"
	"auction-engine/internal/finalizer"
	"auction-engine/internal/models"
	"auction-engine/internal/orders"
	"auction-engine/internal/repository"
	"auction-engine/internal/store"
)

var testNow = time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newService(db repository.MarketDB) *Service {
	engine := bidding.NewEngine(db, bidding.WithRand(bidding.NewSeededRand(3)), bidding.WithClock(clock))
	fin := finalizer.New(db, orders.NewEmitter(orders.WithClock(clock)), finalizer.WithClock(clock))
	return NewService(db, bidding.NewBotCycle(db, engine, 4), fin)
}

func TestService_FullLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := repository.NewDocRepo(store.NewMemoryStore())
	price := int64(1000)
	require.NoError(t, repo.PutAuction(ctx, models.Auction{
		ID:            "L1",
		Title:         "Desk",
		Status:        models.AuctionStatusActive,
		CurrentPrice:  &price,
		StartingPrice: 1000,
		CreatedBy:     "admin",
		EndTime:       testNow.Add(-time.Second).Format(time.RFC3339),
	}))
	require.NoError(t, repo.PutBot(ctx, models.Bot{ID: "bot-1", Name: "Bot", IsActive: true, Balance: 5000, MaxBidAmount: 5000, MinIncrement: 500, IntervalMin: 1, IntervalMax: 2}))

	svc := newService(repo)

	botReport, err := svc.RunBotCycle(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, botReport.BidsPlaced)

	bids, err := svc.GetBids(ctx, "L1")
	require.NoError(t, err)
	require.Len(t, bids, 1)

	winning, err := svc.GetWinningBid(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, "bot-1", winning.UserID)

	finReport, err := svc.RunFinalizationCycle(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, finReport.BotWinners)

	auction, err := repo.GetAuction(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, models.AuctionStatusEnded, auction.Status)
	require.Equal(t, "bot-1", auction.WinnerID)
}

func TestService_Reads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := repository.NewDocRepo(store.NewMemoryStore())
	require.NoError(t, repo.PutAuction(ctx, models.Auction{ID: "empty", StartingPrice: 10}))
	svc := newService(repo)

	_, err := svc.GetBids(ctx, "")
	require.ErrorIs(t, err, auctionerrors.ErrInvalidAuctionID)

	_, err = svc.GetWinningBid(ctx, "")
	require.ErrorIs(t, err, auctionerrors.ErrInvalidAuctionID)

	_, err = svc.GetBids(ctx, "missing")
	require.ErrorIs(t, err, auctionerrors.ErrNotFound)

	bids, err := svc.GetBids(ctx, "empty")
	require.NoError(t, err)
	require.Empty(t, bids)

	_, err = svc.GetWinningBid(ctx, "empty")
	require.ErrorIs(t, err, auctionerrors.ErrNoBids)
}

func TestService_Tasks(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("store offline")
	db := repository.NewMockMarketDB(ctrl)
	db.EXPECT().ListBots(gomock.Any()).Return(nil, boom)
	db.EXPECT().ListAuctions(gomock.Any()).Return(nil, nil)

	tasks := newService(db).Tasks(time.Minute, 2*time.Minute)
	require.Len(t, tasks, 2)
	require.Equal(t, TaskBotCycle, tasks[0].Name)
	require.Equal(t, time.Minute, tasks[0].Interval)
	require.Equal(t, TaskFinalizationCycle, tasks[1].Name)
	require.Equal(t, 2*time.Minute, tasks[1].Interval)

	require.ErrorIs(t, tasks[0].Run(context.Background()), boom)
	require.NoError(t, tasks[1].Run(context.Background()))
}
