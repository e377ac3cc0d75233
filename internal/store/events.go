package store

import (
        "context"
        "encoding/json"
        "errors"
        "slices"
        "strings"
        "time"

        "dataflow-cli/internal/model"

        "github.com/oklog/ulid/v2"
)

// AppendEvent records a mutation in the workspace event log. Event ids are
// ULIDs, so lexical order is creation order.
func (s Store) AppendEvent(ctx context.Context, typ string, clumpID int, payload any) (model.Event, error) {
        typ = strings.TrimSpace(typ)
        if typ == "" {
                return model.Event{}, errors.New("event type is empty")
        }
        raw, err := json.Marshal(payload)
        if err != nil {
                return model.Event{}, err
        }

        db, err := s.openSQLite(ctx)
        if err != nil {
                return model.Event{}, err
        }
        defer db.Close()

        now := time.Now().UTC()
        ev := model.Event{
                ID:      ulid.Make().String(),
                TS:      now,
                Type:    typ,
                ClumpID: clumpID,
                Payload: payload,
        }
        if _, err := db.ExecContext(ctx, `INSERT INTO events(event_id, ts_unixms, type, clump_id, payload_json) VALUES(?, ?, ?, ?, ?)`,
                ev.ID, now.UnixMilli(), ev.Type, ev.ClumpID, string(raw)); err != nil {
                return model.Event{}, err
        }
        storeLog().Debug("appended event", "type", ev.Type, "clumpId", ev.ClumpID, "eventId", ev.ID)
        return ev, nil
}

// ReadEvents returns the most recent events, oldest first.
//
// limit <= 0 means "all".
func (s Store) ReadEvents(ctx context.Context, limit int) ([]model.Event, error) {
        db, err := s.openSQLite(ctx)
        if err != nil {
                return nil, err
        }
        defer db.Close()

        q := `SELECT event_id, ts_unixms, type, clump_id, payload_json FROM events ORDER BY event_id DESC`
        args := []any{}
        if limit > 0 {
                q += ` LIMIT ?`
                args = append(args, limit)
        }
        rows, err := db.QueryContext(ctx, q, args...)
        if err != nil {
                return nil, err
        }
        defer rows.Close()

        out := []model.Event{}
        for rows.Next() {
                var (
                        ev          model.Event
                        tsMs        int64
                        payloadJSON string
                )
                if err := rows.Scan(&ev.ID, &tsMs, &ev.Type, &ev.ClumpID, &payloadJSON); err != nil {
                        return nil, err
                }
                ev.TS = time.UnixMilli(tsMs).UTC()
                if payloadJSON != "" && payloadJSON != "null" {
                        var p any
                        if err := json.Unmarshal([]byte(payloadJSON), &p); err != nil {
                                return nil, err
                        }
                        ev.Payload = p
                }
                out = append(out, ev)
        }
        if err := rows.Err(); err != nil {
                return nil, err
        }
        slices.Reverse(out)
        return out, nil
}
