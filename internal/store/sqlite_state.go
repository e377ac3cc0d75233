package store

import (
        "context"
        "database/sql"
        "encoding/json"
        "errors"
        "fmt"
        "os"
        "strconv"
        "strings"
        "time"

        "dataflow-cli/internal/model"

        _ "modernc.org/sqlite"
)

const stateVersion = 1

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
        if err := s.Ensure(); err != nil {
                return nil, err
        }
        // modernc.org/sqlite driver name is "sqlite".
        db, err := sql.Open("sqlite", s.SQLitePath())
        if err != nil {
                return nil, err
        }
        // WAL lets the TUI keep reading while the CLI writes from another terminal.
        pragmas := []string{
                "PRAGMA journal_mode=WAL;",
                "PRAGMA synchronous=NORMAL;",
                "PRAGMA busy_timeout=5000;",
        }
        for _, p := range pragmas {
                if _, err := db.ExecContext(ctx, p); err != nil {
                        _ = db.Close()
                        return nil, err
                }
        }
        if err := migrateSQLiteState(ctx, db); err != nil {
                _ = db.Close()
                return nil, err
        }
        return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
        stmts := []string{
                `CREATE TABLE IF NOT EXISTS state_meta (
                        k TEXT PRIMARY KEY,
                        v TEXT NOT NULL
                );`,
                `CREATE TABLE IF NOT EXISTS clumps (
                        pos INTEGER PRIMARY KEY,
                        id INTEGER NOT NULL UNIQUE,
                        name TEXT NOT NULL,
                        linked_to_left INTEGER NOT NULL,
                        linked_to_above INTEGER NOT NULL,
                        json TEXT NOT NULL,
                        updated_at_unixms INTEGER NOT NULL
                );`,
                `CREATE TABLE IF NOT EXISTS events (
                        event_id TEXT PRIMARY KEY,
                        ts_unixms INTEGER NOT NULL,
                        type TEXT NOT NULL,
                        clump_id INTEGER NOT NULL,
                        payload_json TEXT NOT NULL
                );`,
                `CREATE INDEX IF NOT EXISTS idx_events_clump ON events(clump_id, ts_unixms);`,
        }
        for _, st := range stmts {
                if _, err := db.ExecContext(ctx, st); err != nil {
                        return err
                }
        }
        return nil
}

// LoadSQLite loads the workspace state. When the SQLite state is empty but a
// legacy clumps.json exists, it is decoded and imported once.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
        db, err := s.openSQLite(ctx)
        if err != nil {
                return nil, err
        }
        defer db.Close()

        var n int
        if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clumps`).Scan(&n); err != nil {
                return nil, err
        }
        if n == 0 {
                if b, err := os.ReadFile(s.legacyPath()); err == nil && len(b) > 0 {
                        imported, err := decodeLegacyFile(b)
                        if err != nil {
                                return nil, fmt.Errorf("import %s: %w", legacyFileName, err)
                        }
                        storeLog().Info("imported legacy clump file", "path", s.legacyPath(), "clumps", len(imported.Clumps), "schema", imported.Schema.String())
                        st := &DB{Version: stateVersion, HighestID: imported.HighestID, Clumps: imported.Clumps}
                        if err := s.SaveSQLite(ctx, st); err != nil {
                                return nil, err
                        }
                }
        }

        return loadStateFromSQLite(ctx, db)
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
        out := &DB{Version: stateVersion}

        readMeta := func(k string) string {
                var v string
                _ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
                return strings.TrimSpace(v)
        }
        if v := readMeta("version"); v != "" {
                if n, err := strconv.Atoi(v); err == nil {
                        out.Version = n
                }
        }
        if v := readMeta("highest_id"); v != "" {
                n, err := strconv.Atoi(v)
                if err != nil {
                        return nil, fmt.Errorf("state_meta highest_id: %w", err)
                }
                out.HighestID = n
        }

        rows, err := db.QueryContext(ctx, `SELECT json FROM clumps ORDER BY pos ASC`)
        if err != nil {
                return nil, err
        }
        defer rows.Close()

        out.Clumps = []model.Clump{}
        for rows.Next() {
                var js string
                if err := rows.Scan(&js); err != nil {
                        return nil, err
                }
                var c model.Clump
                if err := json.Unmarshal([]byte(js), &c); err != nil {
                        return nil, err
                }
                out.Clumps = append(out.Clumps, c)
        }
        if err := rows.Err(); err != nil {
                return nil, err
        }

        // The counter never trails what is stored.
        out.HighestID = max(out.HighestID, MaxClumpID(out.Clumps))
        storeLog().Debug("loaded state", "clumps", len(out.Clumps), "highestId", out.HighestID)
        return out, nil
}

// SaveSQLite replaces the stored clump list with st.Clumps, keeping order.
func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
        if st == nil {
                return errors.New("nil db")
        }
        db, err := s.openSQLite(ctx)
        if err != nil {
                return err
        }
        defer db.Close()

        tx, err := db.BeginTx(ctx, &sql.TxOptions{})
        if err != nil {
                return err
        }
        defer func() { _ = tx.Rollback() }()

        version := st.Version
        if version == 0 {
                version = stateVersion
        }
        if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(version)); err != nil {
                return err
        }
        if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "highest_id", strconv.Itoa(st.HighestID)); err != nil {
                return err
        }

        // Replace-all: the list is small and its order is the data.
        if _, err := tx.ExecContext(ctx, `DELETE FROM clumps`); err != nil {
                return err
        }
        nowMs := time.Now().UTC().UnixMilli()
        for pos, c := range st.Clumps {
                raw, err := json.Marshal(c)
                if err != nil {
                        return err
                }
                if _, err := tx.ExecContext(ctx, `INSERT INTO clumps(pos, id, name, linked_to_left, linked_to_above, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
                        pos, c.ID, c.Name, c.LinkedToLeft(), c.LinkedToAbove(), string(raw), nowMs); err != nil {
                        return err
                }
        }
        if err := tx.Commit(); err != nil {
                return err
        }
        storeLog().Debug("saved state", "dir", s.Dir, "clumps", len(st.Clumps), "highestId", st.HighestID)
        return nil
}
