package perftests

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"auction-engine/internal/bidding"
	"auction-engine/internal/finalizer"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/internal/orders"
	"auction-engine/internal/repository"
	"auction-engine/internal/store"
	"auction-engine/utils"
)

func init() {
	utils.SetLevel("error")
}

// market holds a seeded stack ready for benchmarking
type market struct {
	repo    *repository.DocRepo
	engine  *bidding.Engine
	service *lifecycle.Service
	bots    []model.Bot
}

func int64Ptr(v int64) *int64 { return &v }

// setupMarket seeds numBots bots and numAuctions active auctions on driver.
// endIn sets every auction's end time relative to now.
func setupMarket(b *testing.B, driver string, numBots, numAuctions int, endIn time.Duration) *market {
	b.Helper()

	opts := store.Options{Driver: driver}
	if driver == store.DriverSQLite {
		opts.SQLitePath = filepath.Join(b.TempDir(), "bench.db")
	}
	s, err := store.Open(opts)
	if err != nil {
		b.Fatalf("open store: %v", err)
	}
	b.Cleanup(func() { s.Close() })

	repo := repository.NewDocRepo(s)
	ctx := context.Background()
	endTime := time.Now().Add(endIn).UTC().Format(time.RFC3339)

	m := &market{repo: repo}
	for i := 0; i < numAuctions; i++ {
		err := repo.PutAuction(ctx, model.Auction{
			ID:            fmt.Sprintf("auction_%d", i),
			Title:         fmt.Sprintf("title_%d", i),
			Status:        model.AuctionStatusActive,
			StartingPrice: 1000,
			CurrentPrice:  int64Ptr(1000),
			CreatedBy:     "admin",
			EndTime:       endTime,
		})
		if err != nil {
			b.Fatalf("seed auction: %v", err)
		}
	}
	for i := 0; i < numBots; i++ {
		bot := model.Bot{
			ID:           fmt.Sprintf("bot_%d", i),
			Name:         fmt.Sprintf("Bot %d", i),
			IsActive:     true,
			Balance:      1_000_000_000,
			MaxBidAmount: 1_000_000_000,
			MinIncrement: 10,
			IntervalMin:  1,
			IntervalMax:  5,
		}
		if err := repo.PutBot(ctx, bot); err != nil {
			b.Fatalf("seed bot: %v", err)
		}
		m.bots = append(m.bots, bot)
	}

	m.engine = bidding.NewEngine(repo)
	fin := finalizer.New(repo, orders.NewEmitter())
	m.service = lifecycle.NewService(repo, bidding.NewBotCycle(repo, m.engine, 0), fin)
	return m
}
