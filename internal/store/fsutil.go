package store

import (
        "context"
        "errors"
        "fmt"
        "io"
        "os"
        "path/filepath"
)

func CopyFile(src string, dest string) error {
        src = filepath.Clean(src)
        dest = filepath.Clean(dest)
        if src == "" || dest == "" {
                return errors.New("copy file: missing src/dest")
        }
        in, err := os.Open(src)
        if err != nil {
                return err
        }
        defer in.Close()

        if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
                return err
        }
        out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
        if err != nil {
                return err
        }
        defer func() { _ = out.Close() }()

        if _, err := io.Copy(out, in); err != nil {
                return err
        }
        return out.Close()
}

// Backup writes a self-contained copy of the workspace database to dest.
// The WAL is checkpointed first so the copy does not depend on sidecar files.
func (s Store) Backup(ctx context.Context, dest string) error {
        if _, err := os.Stat(s.SQLitePath()); err != nil {
                if errors.Is(err, os.ErrNotExist) {
                        return fmt.Errorf("no database in %s", s.Dir)
                }
                return err
        }
        db, err := s.openSQLite(ctx)
        if err != nil {
                return err
        }
        if _, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE);`); err != nil {
                _ = db.Close()
                return err
        }
        if err := db.Close(); err != nil {
                return err
        }
        if err := CopyFile(s.SQLitePath(), dest); err != nil {
                return err
        }
        storeLog().Info("backed up workspace", "src", s.SQLitePath(), "dest", dest)
        return nil
}
