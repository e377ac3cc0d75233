package store

import (
        "context"
        "log/slog"
        "os"
        "path/filepath"

        "dataflow-cli/internal/grid"
        "dataflow-cli/internal/logging"
        "dataflow-cli/internal/model"
)

const (
        sqliteFileName = "dataflow.sqlite"
        legacyFileName = "clumps.json"
)

type DB struct {
        Version   int           `json:"version"`
        HighestID int           `json:"highestId"`
        Clumps    []model.Clump `json:"clumps"`

        // Derived layout. Not persisted; rebuilt whenever Clumps changes.
        layout *Layout `json:"-"`
}

type Layout struct {
        Grid    *grid.Grid
        Columns grid.ColumnIndex
}

type Store struct {
        Dir string
}

func storeLog() *slog.Logger { return logging.ForComponent(logging.CompStorage) }

func DiscoverDir(start string) (string, bool) {
        dir := start
        for {
                candidate := filepath.Join(dir, ".dataflow")
                if st, err := os.Stat(candidate); err == nil && st.IsDir() {
                        return candidate, true
                }
                parent := filepath.Dir(dir)
                if parent == dir {
                        return "", false
                }
                dir = parent
        }
}

func WorkspaceDir(name string) (string, error) {
        name, err := NormalizeWorkspaceName(name)
        if err != nil {
                return "", err
        }
        dir, err := ConfigDir()
        if err != nil {
                return "", err
        }
        return filepath.Join(dir, "workspaces", name), nil
}

func (s Store) Ensure() error {
        return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) SQLitePath() string {
        return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) legacyPath() string {
        return filepath.Join(s.Dir, legacyFileName)
}

func (s Store) Load() (*DB, error) {
        return s.LoadSQLite(context.Background())
}

func (s Store) Save(db *DB) error {
        return s.SaveSQLite(context.Background(), db)
}

func (db *DB) FindClump(id int) (*model.Clump, bool) {
        for i := range db.Clumps {
                if db.Clumps[i].ID == id {
                        return &db.Clumps[i], true
                }
        }
        return nil, false
}

// NextClumpID is the id the next added clump receives. It does not advance the
// counter; Replace does once the new list is accepted.
func (db *DB) NextClumpID() int {
        return db.HighestID + 1
}

// Layout returns the placement grid for the current clump list, building it
// on first use.
func (db *DB) Layout() (Layout, error) {
        if db.layout != nil {
                return *db.layout, nil
        }
        g, idx, err := grid.Build(db.Clumps)
        if err != nil {
                return Layout{}, err
        }
        db.layout = &Layout{Grid: g, Columns: idx}
        return *db.layout, nil
}

// Replace swaps in a new clump list together with its already-built layout.
func (db *DB) Replace(clumps []model.Clump, highest int, l Layout) {
        db.Clumps = clumps
        db.HighestID = highest
        db.layout = &l
}

// MaxClumpID is the highest id present in clumps, 0 when empty.
func MaxClumpID(clumps []model.Clump) int {
        highest := 0
        for _, c := range clumps {
                highest = max(highest, c.ID)
        }
        return highest
}
