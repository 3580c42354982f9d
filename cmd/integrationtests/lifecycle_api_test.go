package integrationtests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	model "auction-engine/internal/models"
	"auction-engine/internal/store"
)

func int64Ptr(v int64) *int64 { return &v }

func TestLifecycle_BotsBidThenAuctionsFinalize(t *testing.T) {
	for _, driver := range allDrivers() {
		t.Run(driver, func(t *testing.T) {
			past := time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
			future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

			bots := []model.Bot{
				{ID: "bot-1", Name: "Atlas", IsActive: true, Balance: 20000, MaxBidAmount: 15000, MinIncrement: 500, IntervalMin: 30, IntervalMax: 90, TargetAuctionIDs: []string{"A1"}},
				{ID: "bot-broken", Name: "Broken", IsActive: true, Balance: 0, MaxBidAmount: 100, IntervalMin: 1, IntervalMax: 1},
				{ID: "bot-asleep", Name: "Asleep", IsActive: false},
			}
			auctions := []model.Auction{
				{ID: "A1", Title: "Bronze Lamp", Status: model.AuctionStatusActive, CurrentPrice: int64Ptr(10000), StartingPrice: 8000, CreatedBy: "admin", EndTime: future},
				{ID: "A3", Title: "Vintage Camera", Status: model.AuctionStatusActive, StartingPrice: 5000, CreatedBy: "admin", EndTime: past,
					Bids: model.BidList{{ID: "h1", AuctionID: "A3", UserID: "u2", Username: "sara", Amount: 9000, CreatedAt: time.Now().Add(-time.Hour).UTC()}}},
				{ID: "A4", Title: "Old Radio", Status: model.AuctionStatusActive, StartingPrice: 100, CreatedBy: "admin", EndTime: past},
			}
			env := SetupTestEnv(t, driver, bots, auctions)

			resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/cycles/bots", nil)
			require.Equal(t, http.StatusOK, w.Code)
			data := resp["data"].(map[string]any)
			require.Equal(t, 3.0, data["bots_loaded"])
			require.Equal(t, 1.0, data["bots_inactive"])
			require.Equal(t, 1.0, data["bots_skipped"])
			require.Equal(t, 1.0, data["bids_placed"])

			resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions/A1/bids", nil)
			require.Equal(t, http.StatusOK, w.Code)
			bids := resp["data"].([]any)
			require.Len(t, bids, 1)
			bid := bids[0].(map[string]any)
			require.Equal(t, "bot-1", bid["user_id"])
			require.Equal(t, true, bid["is_bot"])
			amount := int64(bid["amount"].(float64))
			require.GreaterOrEqual(t, amount, int64(10500))
			require.LessOrEqual(t, amount, int64(15000))
			require.Zero(t, amount%500)

			resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/cycles/finalization", nil)
			require.Equal(t, http.StatusOK, w.Code)
			data = resp["data"].(map[string]any)
			require.Equal(t, 2.0, data["ended"])
			require.Equal(t, 1.0, data["orders_created"])
			require.Equal(t, 1.0, data["unsold"])

			resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions/A3/winning", nil)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, "u2", resp["data"].(map[string]any)["user_id"])

			_, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions/A4/winning", nil)
			require.Equal(t, http.StatusNotFound, w.Code)

			_, w = ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/auctions/nope/bids", nil)
			require.Equal(t, http.StatusNotFound, w.Code)

			ctx := context.Background()
			a3, err := env.Repo.GetAuction(ctx, "A3")
			require.NoError(t, err)
			require.Equal(t, model.AuctionStatusEnded, a3.Status)
			require.Equal(t, "u2", a3.WinnerID)

			orderDocs, err := env.Store.GetAll(ctx, model.CollectionOrders)
			require.NoError(t, err)
			require.Len(t, orderDocs, 1)
			for _, doc := range orderDocs {
				var order model.Order
				require.NoError(t, json.Unmarshal(doc, &order))
				require.Equal(t, int64(9000), order.Amount)
				require.Equal(t, "A3", order.ProductID)
				require.Equal(t, 48*time.Hour, order.ExpiresAt.Sub(order.CreatedAt))
			}

			notes, err := env.Store.GetAll(ctx, model.CollectionNotifications)
			require.NoError(t, err)
			require.Len(t, notes, 1)

			// A second finalization is a no-op.
			resp, w = ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/cycles/finalization", nil)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, 0.0, resp["data"].(map[string]any)["candidates"])

			orderDocs, err = env.Store.GetAll(ctx, model.CollectionOrders)
			require.NoError(t, err)
			require.Len(t, orderDocs, 1)
		})
	}
}

func TestLifecycle_FrontEndFieldsSurvive(t *testing.T) {
	env := SetupTestEnv(t, store.DriverMemory, []model.Bot{
		{ID: "bot-1", Name: "Atlas", IsActive: true, Balance: 5000, MaxBidAmount: 5000, MinIncrement: 500, IntervalMin: 1, IntervalMax: 1},
	}, nil)

	ctx := context.Background()
	raw := `{"title":"Poster","status":"active","startingPrice":1000,"createdBy":"admin","description":"signed","category":{"id":"art"}}`
	require.NoError(t, env.Store.Set(ctx, model.CollectionAuctions, "P1", json.RawMessage(raw)))

	_, w := ExecuteRequestAndParse(t, env.Router, http.MethodPost, "/cycles/bots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := env.Store.Get(ctx, model.CollectionAuctions, "P1")
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(doc, &fields))
	require.Equal(t, "signed", fields["description"])
	require.Equal(t, map[string]any{"id": "art"}, fields["category"])
	require.NotNil(t, fields["bids"])
	require.NotNil(t, fields["lastBidAt"])
}

func TestHealth(t *testing.T) {
	env := SetupTestEnv(t, store.DriverMemory, nil, nil)
	resp, w := ExecuteRequestAndParse(t, env.Router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", resp["message"])
}
