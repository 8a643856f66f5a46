package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// runRepo implements RunRepo with plain SQL.
type runRepo struct {
	db *sql.DB
}

func (r *runRepo) AppendRun(ctx context.Context, run *Run) error {
	codes, err := json.Marshal(run.DerivedCodes)
	if err != nil {
		return fmt.Errorf("marshal derived codes: %w", err)
	}
	warnings, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs
			(id, timestamp, note_sha256, source_label, difficulty,
			 derived_codes, needs_manual_review, corrections, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, ts.Format(time.RFC3339), run.NoteSHA256, run.SourceLabel,
		run.Difficulty, string(codes), boolToInt(run.NeedsManualReview),
		run.Corrections, string(warnings),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `
		SELECT id, timestamp, note_sha256, source_label, difficulty,
		       derived_codes, needs_manual_review, corrections, warnings
		FROM runs ORDER BY timestamp DESC, id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var ts, codes, warnings string
		var review int
		if err := rows.Scan(&run.ID, &ts, &run.NoteSHA256, &run.SourceLabel,
			&run.Difficulty, &codes, &review, &run.Corrections, &warnings); err != nil {
			return nil, err
		}
		run.NeedsManualReview = review != 0
		if t, perr := time.Parse(time.RFC3339, ts); perr == nil {
			run.Timestamp = t
		}
		if err := json.Unmarshal([]byte(codes), &run.DerivedCodes); err != nil {
			return nil, fmt.Errorf("unmarshal derived codes for run %s: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(warnings), &run.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
