package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/internal/store"
)

// Benchmark_BotCycle measures a full bot cycle over a growing market
func Benchmark_BotCycle(b *testing.B) {
	cases := []struct {
		driver   string
		bots     int
		auctions int
	}{
		{store.DriverMemory, 10, 10},
		{store.DriverMemory, 100, 50},
		{store.DriverSQLite, 10, 10},
		{store.DriverSQLite, 100, 50},
	}

	for _, c := range cases {
		b.Run(fmt.Sprintf("%s/bots=%d/auctions=%d", c.driver, c.bots, c.auctions), func(b *testing.B) {
			m := setupMarket(b, c.driver, c.bots, c.auctions, time.Hour)
			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := m.service.RunBotCycle(ctx); err != nil {
					b.Fatalf("bot cycle: %v", err)
				}
			}
		})
	}
}

// Benchmark_Engine_IsolatedAuctions has each bot bid on its own auction
func Benchmark_Engine_IsolatedAuctions(b *testing.B) {
	const n = 64
	m := setupMarket(b, store.DriverMemory, n, n, time.Hour)
	auctions, err := m.repo.ListAuctions(context.Background())
	if err != nil {
		b.Fatalf("list auctions: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := 0
		for pb.Next() {
			idx := i % n
			i++
			if _, err := m.engine.Bid(ctx, m.bots[idx], []model.Auction{auctions[idx]}); err != nil {
				b.Errorf("bid: %v", err)
			}
		}
	})
}

// Benchmark_Engine_SharedAuction has every bot bid on the same auction
func Benchmark_Engine_SharedAuction(b *testing.B) {
	const n = 64
	m := setupMarket(b, store.DriverMemory, n, 1, time.Hour)
	auctions, err := m.repo.ListAuctions(context.Background())
	if err != nil {
		b.Fatalf("list auctions: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		i := 0
		for pb.Next() {
			if _, err := m.engine.Bid(ctx, m.bots[i%n], auctions); err != nil {
				b.Errorf("bid: %v", err)
			}
			i++
		}
	})
}

// Benchmark_FinalizationCycle finalizes a market of expired auctions that
// each carry one human bid. Setup is excluded from the timing.
func Benchmark_FinalizationCycle(b *testing.B) {
	for _, size := range []int{10, 100} {
		b.Run(fmt.Sprintf("auctions=%d", size), func(b *testing.B) {
			b.ReportAllocs()
			ctx := context.Background()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				m := setupMarket(b, store.DriverMemory, 0, size, -time.Minute)
				for j := 0; j < size; j++ {
					err := m.repo.AppendBid(ctx, fmt.Sprintf("auction_%d", j), model.Bid{
						ID:        fmt.Sprintf("bid_%d", j),
						AuctionID: fmt.Sprintf("auction_%d", j),
						UserID:    fmt.Sprintf("user_%d", j),
						Username:  "bench",
						Amount:    2000,
						CreatedAt: time.Now().UTC(),
					})
					if err != nil {
						b.Fatalf("seed bid: %v", err)
					}
				}
				b.StartTimer()

				report, err := m.service.RunFinalizationCycle(ctx)
				if err != nil {
					b.Fatalf("finalization: %v", err)
				}
				if report.OrdersCreated != size {
					b.Fatalf("expected %d orders, got %d", size, report.OrdersCreated)
				}
			}
		})
	}
}
