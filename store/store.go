// Package store archives tree snapshots in SQLite. Each snapshot keeps
// its full JSON body for reloading plus one row per node so that runs can
// be compared with plain SQL.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/budsim/telemetry"
)

// ErrNotFound is returned by Load for an unknown snapshot id.
var ErrNotFound = errors.New("snapshot not found")

// DB wraps a SQLite connection for snapshot storage.
type DB struct {
	conn *sqlx.DB
}

// SnapshotInfo is the summary row of a stored snapshot.
type SnapshotInfo struct {
	ID        int64  `db:"id"`
	Scenario  string `db:"scenario"`
	Seed      int64  `db:"seed"`
	Ticks     int    `db:"ticks"`
	Nodes     int    `db:"nodes"`
	Tips      int    `db:"tips"`
	CreatedAt string `db:"created_at"`
}

// NodeRow is the stored form of one node.
type NodeRow struct {
	SnapshotID   int64   `db:"snapshot_id"`
	Index        int     `db:"idx"`
	Parent       int     `db:"parent"`
	State        string  `db:"state"`
	Order        int     `db:"ord"`
	InitialOrder int     `db:"initial_order"`
	Segments     int     `db:"segments"`
	Auxin        float64 `db:"auxin"`
	Pin          float64 `db:"pin"`
	AuxinFlow    float64 `db:"auxin_flow"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
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
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		nodes INTEGER NOT NULL,
		tips INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		body TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
		idx INTEGER NOT NULL,
		parent INTEGER NOT NULL,
		state TEXT NOT NULL,
		ord INTEGER NOT NULL,
		initial_order INTEGER NOT NULL,
		segments INTEGER NOT NULL,
		auxin REAL NOT NULL,
		pin REAL NOT NULL,
		auxin_flow REAL NOT NULL,
		PRIMARY KEY (snapshot_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_order ON nodes(snapshot_id, ord);
	CREATE INDEX IF NOT EXISTS idx_snapshots_scenario ON snapshots(scenario);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save stores a snapshot and returns its id.
func (db *DB) Save(s *telemetry.Snapshot) (int64, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO snapshots
		(scenario, seed, ticks, nodes, tips, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Scenario, s.Seed, s.Ticks, s.Tree.Size(), len(s.Tree.TipIndices),
		time.Now().UTC().Format(time.RFC3339Nano), string(body),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Preparex(`INSERT INTO nodes
		(snapshot_id, idx, parent, state, ord, initial_order, segments, auxin, pin, auxin_flow)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i := range s.Tree.Nodes {
		n := &s.Tree.Nodes[i]
		_, err := stmt.Exec(id, n.Index, n.Parent, n.BudState.String(), n.Order, n.InitialOrder,
			len(n.Segments), n.Data.Auxin, n.Data.Pin, n.Data.AuxinFlow)
		if err != nil {
			return 0, fmt.Errorf("insert node %d: %w", n.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	slog.Debug("snapshot stored", "id", id, "scenario", s.Scenario, "nodes", s.Tree.Size())
	return id, nil
}

// Load reads back a stored snapshot.
func (db *DB) Load(id int64) (*telemetry.Snapshot, error) {
	var body string
	err := db.conn.Get(&body, "SELECT body FROM snapshots WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return telemetry.DecodeSnapshot([]byte(body))
}

// List returns the most recent snapshots, newest first.
func (db *DB) List(limit int) ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := db.conn.Select(&infos,
		"SELECT id, scenario, seed, ticks, nodes, tips, created_at FROM snapshots ORDER BY id DESC LIMIT ?",
		limit,
	)
	return infos, err
}

// NodesAtOrder returns the stored nodes of one order of a snapshot.
func (db *DB) NodesAtOrder(id int64, order int) ([]NodeRow, error) {
	var rows []NodeRow
	err := db.conn.Select(&rows,
		`SELECT snapshot_id, idx, parent, state, ord, initial_order, segments, auxin, pin, auxin_flow
		FROM nodes WHERE snapshot_id = ? AND ord = ? ORDER BY idx`,
		id, order,
	)
	return rows, err
}
