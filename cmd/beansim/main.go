// Command beansim runs the coffee-procurement market simulation: one
// simulated day per step, served over HTTP and snapshotted to SQLite.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/beanmarket/internal/api"
	"github.com/talgya/beanmarket/internal/engine"
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/persistence"
	"github.com/talgya/beanmarket/internal/supply"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("beanmarket — coffee procurement market simulation")

	seed := envInt64("BEANSIM_SEED", 42)
	dbPath := envString("BEANSIM_DB", "data/beanmarket.db")
	apiPort := int(envInt64("BEANSIM_PORT", 8080))
	interval := time.Duration(envInt64("BEANSIM_INTERVAL", 5)) * time.Second
	supplierCount := int(envInt64("BEANSIM_SUPPLIERS", supply.DefaultCount))

	// ── Entropy ───────────────────────────────────────────────────────
	var src entropy.Source
	if pool := entropy.NewPool(os.Getenv("RANDOM_ORG_KEY")); pool != nil {
		slog.Info("entropy: random.org pool enabled")
		src = pool
	} else {
		src = entropy.NewSource(seed)
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(dbPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Load or Generate Simulation State ─────────────────────────────
	eng := engine.New(src)

	if db.HasSnapshot() {
		slog.Info("found saved snapshot, loading...")
		snap, err := db.LoadSnapshot()
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		eng.Restore(snap.Suppliers, snap.Contracts, snap.Orders, snap.Conditions,
			snap.Step, snap.SimDate, seed)
		slog.Info("simulation restored",
			"step", snap.Step,
			"sim_date", snap.SimDate.Format("2006-01-02"),
		)
	} else {
		slog.Info("no saved snapshot, generating initial population...")
		eng.Initialize(supplierCount, seed)

		for _, s := range eng.Suppliers() {
			slog.Info("supplier",
				"id", s.ID,
				"name", s.Name,
				"region", s.Region,
				"quality", s.QualityScore,
				"capacity_kg", s.CapacityKgPerYear,
			)
		}
		if err := db.SaveSnapshot(eng); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("BEANSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("BEANSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	runner := engine.NewRunner()
	runner.Interval = interval

	apiServer := &api.Server{
		Eng:      eng,
		Runner:   runner,
		DB:       db,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Step Loop ─────────────────────────────────────────────────────
	// The API server owns the lock serializing engine access; the loop is
	// just another caller.
	runner.OnStep = func(step int) {
		apiServer.Lock()
		eng.AdvanceStep()
		changes := eng.Changes()
		conditions := eng.MarketConditions()
		saveErr := db.SaveSnapshot(eng)
		apiServer.Unlock()

		if saveErr != nil {
			slog.Error("snapshot save failed", "error", saveErr)
		}

		slog.Info("step complete",
			"step", step,
			"sim_date", eng.SimDate().Format("2006-01-02"),
			"avg_price", conditions.AveragePrice,
			"trend", conditions.PriceTrend,
			"order_changes", len(changes.Orders),
			"contract_changes", len(changes.Contracts),
			"supplier_changes", len(changes.Suppliers),
		)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	fmt.Printf("\nbeanmarket is live: %d suppliers, starting price $%.2f/kg.\n",
		len(eng.Suppliers()), eng.MarketConditions().AveragePrice)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runner.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	apiServer.Lock()
	err = db.SaveSnapshot(eng)
	apiServer.Unlock()
	if err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. State saved.")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
