package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wieslogic/jagdlog/internal/hunt/domain"
)

// AppendEvent appends a live event to the session feed. The per-session
// sequence number is allocated inside the insert transaction, so sequences
// are gapless and strictly increasing regardless of caller interleaving.
func (s *Store) AppendEvent(ctx context.Context, event domain.LiveEvent) (domain.LiveEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.LiveEvent{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.LiveEvent{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return domain.LiveEvent{}, fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(event.SessionID) == "" {
		return domain.LiveEvent{}, fmt.Errorf("session id is required")
	}
	if !event.Type.IsValid() {
		return domain.LiveEvent{}, fmt.Errorf("event type %q is not supported", event.Type)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC().Truncate(time.Millisecond)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.LiveEvent{}, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO event_seqs (session_id, next_seq) VALUES (?, 1)
ON CONFLICT(session_id) DO NOTHING
`, event.SessionID); err != nil {
		return domain.LiveEvent{}, fmt.Errorf("init event seq: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `
SELECT next_seq FROM event_seqs WHERE session_id = ?
`, event.SessionID).Scan(&seq); err != nil {
		return domain.LiveEvent{}, fmt.Errorf("get event seq: %w", err)
	}
	if seq <= 0 {
		return domain.LiveEvent{}, fmt.Errorf("event seq is required")
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE event_seqs SET next_seq = next_seq + 1 WHERE session_id = ?
`, event.SessionID); err != nil {
		return domain.LiveEvent{}, fmt.Errorf("increment event seq: %w", err)
	}
	event.Seq = uint64(seq)

	var payload sql.NullString
	if len(event.PayloadJSON) > 0 {
		payload = sql.NullString{String: string(event.PayloadJSON), Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO live_events (
	session_id, seq, id, event_type, timestamp, origin, payload, visibility
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		event.SessionID,
		seq,
		event.ID,
		string(event.Type),
		toMillis(event.Timestamp),
		event.Origin,
		payload,
		event.Visibility.String(),
	); err != nil {
		return domain.LiveEvent{}, fmt.Errorf("append event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.LiveEvent{}, fmt.Errorf("commit append tx: %w", err)
	}
	return event, nil
}

// ListEventsSince returns up to limit events of a session with Seq greater
// than afterSeq, in sequence order. A limit of zero or less means no limit.
func (s *Store) ListEventsSince(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]domain.LiveEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if limit <= 0 {
		limit = -1 // sqlite treats a negative LIMIT as unbounded
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT session_id, seq, id, event_type, timestamp, origin, payload, visibility
FROM live_events
WHERE session_id = ? AND seq > ?
ORDER BY seq ASC
LIMIT ?
`, sessionID, int64(afterSeq), limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.LiveEvent
	for rows.Next() {
		var (
			event      domain.LiveEvent
			seq        int64
			eventType  string
			timestamp  int64
			payload    sql.NullString
			visibility string
		)
		if err := rows.Scan(
			&event.SessionID,
			&seq,
			&event.ID,
			&eventType,
			&timestamp,
			&event.Origin,
			&payload,
			&visibility,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		event.Seq = uint64(seq)
		event.Type = domain.LiveEventType(eventType)
		event.Timestamp = fromMillis(timestamp)
		if payload.Valid {
			event.PayloadJSON = []byte(payload.String)
		}
		event.Visibility = domain.ParseEventVisibility(visibility)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}
