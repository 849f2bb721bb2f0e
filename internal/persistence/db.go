// Package persistence provides SQLite-based snapshot storage so a simulation
// run can resume where it left off. The engine itself is memory-only; this
// layer sits outside it.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/beanmarket/internal/engine"
	"github.com/talgya/beanmarket/internal/market"
	"github.com/talgya/beanmarket/internal/supply"
	"github.com/talgya/beanmarket/internal/trade"
)

// DB wraps a SQLite connection for simulation snapshots.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		region TEXT NOT NULL,
		country TEXT,
		quality_score REAL NOT NULL,
		reliability_score REAL NOT NULL,
		sustainability_score REAL NOT NULL,
		capacity_kg_per_year INTEGER NOT NULL,
		years_in_business INTEGER NOT NULL,
		bean_types_json TEXT NOT NULL,
		certifications_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contracts (
		rowid_seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		status TEXT NOT NULL,
		doc_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		rowid_seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		status TEXT NOT NULL,
		doc_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS market_conditions (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		doc_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);
	CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasSnapshot reports whether a previous run left a snapshot to resume from.
func (db *DB) HasSnapshot() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM sim_meta WHERE key = 'step'"); err != nil {
		return false
	}
	return n > 0
}

// SaveSnapshot writes the full simulation state (full replace) in one
// transaction.
func (db *DB) SaveSnapshot(eng *engine.MarketEngine) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM suppliers"); err != nil {
		return err
	}
	for _, s := range eng.Suppliers() {
		beansJSON, _ := json.Marshal(s.BeanTypes)
		certsJSON, _ := json.Marshal(s.Certifications)
		_, err := tx.Exec(`INSERT INTO suppliers
			(id, name, region, country, quality_score, reliability_score,
			 sustainability_score, capacity_kg_per_year, years_in_business,
			 bean_types_json, certifications_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.Region, s.Country, s.QualityScore, s.ReliabilityScore,
			s.SustainabilityScore, s.CapacityKgPerYear, s.YearsInBusiness,
			string(beansJSON), string(certsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert supplier %s: %w", s.ID, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM contracts"); err != nil {
		return err
	}
	for _, c := range eng.Contracts() {
		doc, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal contract %s: %w", c.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO contracts (id, status, doc_json) VALUES (?, ?, ?)",
			c.ID, c.Status, string(doc),
		); err != nil {
			return fmt.Errorf("insert contract %s: %w", c.ID, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM orders"); err != nil {
		return err
	}
	for _, o := range eng.Orders() {
		doc, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("marshal order %s: %w", o.ID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO orders (id, status, doc_json) VALUES (?, ?, ?)",
			o.ID, o.Status, string(doc),
		); err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}

	condDoc, err := json.Marshal(eng.MarketConditions())
	if err != nil {
		return fmt.Errorf("marshal market conditions: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO market_conditions (id, doc_json) VALUES (1, ?)",
		string(condDoc),
	); err != nil {
		return err
	}

	meta := map[string]string{
		"step":     strconv.Itoa(eng.Step()),
		"sim_date": eng.SimDate().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO sim_meta (key, value) VALUES (?, ?)", k, v,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Snapshot is the loaded form of a saved run.
type Snapshot struct {
	Suppliers  []*supply.Supplier
	Contracts  []*trade.Contract
	Orders     []*trade.Order
	Conditions *market.Conditions
	Step       int
	SimDate    time.Time
}

// LoadSnapshot reads the full saved state back.
func (db *DB) LoadSnapshot() (*Snapshot, error) {
	snap := &Snapshot{Conditions: &market.Conditions{}}

	type supplierRow struct {
		ID                  string  `db:"id"`
		Name                string  `db:"name"`
		Region              string  `db:"region"`
		Country             string  `db:"country"`
		QualityScore        float64 `db:"quality_score"`
		ReliabilityScore    float64 `db:"reliability_score"`
		SustainabilityScore float64 `db:"sustainability_score"`
		CapacityKgPerYear   int     `db:"capacity_kg_per_year"`
		YearsInBusiness     int     `db:"years_in_business"`
		BeanTypesJSON       string  `db:"bean_types_json"`
		CertificationsJSON  string  `db:"certifications_json"`
	}
	var supplierRows []supplierRow
	if err := db.conn.Select(&supplierRows, "SELECT * FROM suppliers"); err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	for _, row := range supplierRows {
		s := &supply.Supplier{
			ID:                  row.ID,
			Name:                row.Name,
			Region:              row.Region,
			Country:             row.Country,
			QualityScore:        row.QualityScore,
			ReliabilityScore:    row.ReliabilityScore,
			SustainabilityScore: row.SustainabilityScore,
			CapacityKgPerYear:   row.CapacityKgPerYear,
			YearsInBusiness:     row.YearsInBusiness,
		}
		if err := json.Unmarshal([]byte(row.BeanTypesJSON), &s.BeanTypes); err != nil {
			return nil, fmt.Errorf("supplier %s bean types: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.CertificationsJSON), &s.Certifications); err != nil {
			return nil, fmt.Errorf("supplier %s certifications: %w", row.ID, err)
		}
		snap.Suppliers = append(snap.Suppliers, s)
	}

	var contractDocs []string
	if err := db.conn.Select(&contractDocs, "SELECT doc_json FROM contracts ORDER BY rowid_seq"); err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}
	for i, doc := range contractDocs {
		var c trade.Contract
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("contract row %d: %w", i, err)
		}
		snap.Contracts = append(snap.Contracts, &c)
	}

	var orderDocs []string
	if err := db.conn.Select(&orderDocs, "SELECT doc_json FROM orders ORDER BY rowid_seq"); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	for i, doc := range orderDocs {
		var o trade.Order
		if err := json.Unmarshal([]byte(doc), &o); err != nil {
			return nil, fmt.Errorf("order row %d: %w", i, err)
		}
		snap.Orders = append(snap.Orders, &o)
	}

	var condDoc string
	err := db.conn.Get(&condDoc, "SELECT doc_json FROM market_conditions WHERE id = 1")
	switch {
	case err == sql.ErrNoRows:
		// Tolerable: a snapshot saved before the first step.
	case err != nil:
		return nil, fmt.Errorf("load market conditions: %w", err)
	default:
		if err := json.Unmarshal([]byte(condDoc), snap.Conditions); err != nil {
			return nil, fmt.Errorf("market conditions: %w", err)
		}
	}

	if stepStr, err := db.getMeta("step"); err == nil {
		if n, err := strconv.Atoi(stepStr); err == nil {
			snap.Step = n
		}
	}
	snap.SimDate = time.Now()
	if dateStr, err := db.getMeta("sim_date"); err == nil {
		if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
			snap.SimDate = t
		}
	}

	slog.Info("snapshot loaded",
		"suppliers", len(snap.Suppliers),
		"contracts", len(snap.Contracts),
		"orders", len(snap.Orders),
		"step", snap.Step,
	)
	return snap, nil
}

func (db *DB) getMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}
