package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// runLog implements driven.RunLog.
type runLog struct {
	store *Store
}

var _ driven.RunLog = (*runLog)(nil)

const eventColumns = `run_id, run_trigger, fetch_mode, state, status, error_detail,
	errors, counts, channel_stats, delivery, started_at, completed_at`

// Commit writes event and, when brief is non-nil, the brief in one transaction.
func (r *runLog) Commit(ctx context.Context, event domain.RefreshEvent, brief *domain.Brief) (err error) {
	if event.RunID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	if !event.State.IsTerminal() {
		return fmt.Errorf("%w: state %s", domain.ErrRunNotTerminal, event.State)
	}

	errorsJSON, err := json.Marshal(event.Errors)
	if err != nil {
		return fmt.Errorf("marshalling errors: %w", err)
	}
	countsJSON, err := json.Marshal(event.Counts)
	if err != nil {
		return fmt.Errorf("marshalling counts: %w", err)
	}
	statsJSON, err := marshalNullable(event.ChannelStats)
	if err != nil {
		return fmt.Errorf("marshalling channel stats: %w", err)
	}
	deliveryJSON, err := marshalNullable(event.Delivery)
	if err != nil {
		return fmt.Errorf("marshalling delivery: %w", err)
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM refresh_events WHERE run_id = ?", event.RunID).
		Scan(&exists); err != nil {
		return fmt.Errorf("checking run %s: %w", event.RunID, err)
	}
	if exists > 0 {
		err = fmt.Errorf("%w: run %s already committed", domain.ErrInvalidInput, event.RunID)
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO refresh_events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.RunID, string(event.Trigger), string(event.FetchMode), string(event.State), string(event.Status),
		nullString(event.ErrorDetail), string(errorsJSON), string(countsJSON), statsJSON, deliveryJSON,
		formatTime(event.StartedAt), formatTime(event.CompletedAt))
	if err != nil {
		return fmt.Errorf("inserting refresh event: %w", err)
	}

	if brief != nil {
		var sectionsJSON, itemsJSON []byte
		if sectionsJSON, err = json.Marshal(brief.Sections); err != nil {
			return fmt.Errorf("marshalling sections: %w", err)
		}
		if itemsJSON, err = json.Marshal(brief.Items); err != nil {
			return fmt.Errorf("marshalling items: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO briefs (run_id, generated_at, text, sections, items)
			VALUES (?, ?, ?, ?, ?)`,
			event.RunID, formatTime(brief.GeneratedAt), brief.Text, string(sectionsJSON), string(itemsJSON))
		if err != nil {
			return fmt.Errorf("inserting brief: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", event.RunID, err)
	}
	return nil
}

// Get retrieves an event by run ID.
func (r *runLog) Get(ctx context.Context, runID string) (*domain.RefreshEvent, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM refresh_events WHERE run_id = ?`, runID)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Recent returns up to limit events in commit order, most recent first.
// A limit of zero or less returns every event.
func (r *runLog) Recent(ctx context.Context, limit int) ([]domain.RefreshEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM refresh_events ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying refresh events: %w", err)
	}
	defer rows.Close()

	var events []domain.RefreshEvent //nolint:prealloc // size unknown from query
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating refresh events: %w", err)
	}
	return events, nil
}

// LatestBrief returns the most recently committed brief.
func (r *runLog) LatestBrief(ctx context.Context) (*domain.Brief, error) {
	var brief domain.Brief
	var generatedAt, sectionsJSON, itemsJSON string
	err := r.store.db.QueryRowContext(ctx, `
		SELECT run_id, generated_at, text, sections, items
		FROM briefs ORDER BY seq DESC LIMIT 1
	`).Scan(&brief.RunID, &generatedAt, &brief.Text, &sectionsJSON, &itemsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest brief: %w", err)
	}

	brief.GeneratedAt = parseTime(generatedAt)
	if err := json.Unmarshal([]byte(sectionsJSON), &brief.Sections); err != nil {
		return nil, fmt.Errorf("unmarshalling sections: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &brief.Items); err != nil {
		return nil, fmt.Errorf("unmarshalling items: %w", err)
	}
	return &brief, nil
}

// Prune removes events completed before cutoff together with their briefs.
func (r *runLog) Prune(ctx context.Context, cutoff time.Time) (removed int, err error) {
	bound := formatTime(cutoff)

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM briefs WHERE run_id IN (
			SELECT run_id FROM refresh_events WHERE completed_at < ?
		)`, bound); err != nil {
		return 0, fmt.Errorf("pruning briefs: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM refresh_events WHERE completed_at < ?", bound)
	if err != nil {
		return 0, fmt.Errorf("pruning refresh events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned events: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing prune: %w", err)
	}
	return int(n), nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*domain.RefreshEvent, error) {
	var event domain.RefreshEvent
	var trigger, fetchMode, state, status string
	var errorDetail, stats, delivery sql.NullString
	var errorsJSON, countsJSON, startedAt, completedAt string

	if err := row.Scan(&event.RunID, &trigger, &fetchMode, &state, &status, &errorDetail,
		&errorsJSON, &countsJSON, &stats, &delivery, &startedAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning refresh event: %w", err)
	}

	event.Trigger = domain.Trigger(trigger)
	event.FetchMode = domain.FetchMode(fetchMode)
	event.State = domain.RunState(state)
	event.Status = domain.RunStatus(status)
	event.ErrorDetail = errorDetail.String
	event.StartedAt = parseTime(startedAt)
	event.CompletedAt = parseTime(completedAt)

	if err := json.Unmarshal([]byte(errorsJSON), &event.Errors); err != nil {
		return nil, fmt.Errorf("unmarshalling errors of %s: %w", event.RunID, err)
	}
	if err := json.Unmarshal([]byte(countsJSON), &event.Counts); err != nil {
		return nil, fmt.Errorf("unmarshalling counts of %s: %w", event.RunID, err)
	}
	if stats.Valid {
		event.ChannelStats = &domain.ChannelStats{}
		if err := json.Unmarshal([]byte(stats.String), event.ChannelStats); err != nil {
			return nil, fmt.Errorf("unmarshalling channel stats of %s: %w", event.RunID, err)
		}
	}
	if delivery.Valid {
		event.Delivery = &domain.DeliveryResult{}
		if err := json.Unmarshal([]byte(delivery.String), event.Delivery); err != nil {
			return nil, fmt.Errorf("unmarshalling delivery of %s: %w", event.RunID, err)
		}
	}
	return &event, nil
}

// marshalNullable encodes v as JSON, or returns nil for a nil pointer.
func marshalNullable[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
