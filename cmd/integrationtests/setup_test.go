package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"auction-engine/internal/bidding"
	"auction-engine/internal/finalizer"
	"auction-engine/internal/lifecycle"
	model "auction-engine/internal/models"
	"auction-engine/internal/orders"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/store"
)

// TestEnv bundles a router with direct access to the records behind it
type TestEnv struct {
	Router *gin.Engine
	Repo   *repository.DocRepo
	Store  store.Store
}

// openStore returns a fresh backend for driver
func openStore(t *testing.T, driver string) store.Store {
	t.Helper()
	opts := store.Options{Driver: driver}
	switch driver {
	case store.DriverSQLite:
		opts.SQLitePath = filepath.Join(t.TempDir(), "integration.db")
	case store.DriverRedis:
		opts.Redis = store.RedisOptions{Addr: miniredis.RunT(t).Addr(), Prefix: "it:"}
	}
	s, err := store.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// SetupTestEnv wires the full service stack on the given store driver and
// seeds it with bots and auctions.
func SetupTestEnv(t *testing.T, driver string, bots []model.Bot, auctions []model.Auction) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := openStore(t, driver)
	repo := repository.NewDocRepo(s)
	ctx := context.Background()
	for _, b := range bots {
		require.NoError(t, repo.PutBot(ctx, b))
	}
	for _, a := range auctions {
		require.NoError(t, repo.PutAuction(ctx, a))
	}

	engine := bidding.NewEngine(repo, bidding.WithRand(bidding.NewSeededRand(11)))
	fin := finalizer.New(repo, orders.NewEmitter())
	service := lifecycle.NewService(repo, bidding.NewBotCycle(repo, engine, 4), fin)

	return &TestEnv{Router: server.SetupRouter(service), Repo: repo, Store: s}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

func allDrivers() []string {
	return []string{store.DriverMemory, store.DriverSQLite, store.DriverRedis}
}
