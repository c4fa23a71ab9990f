package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/oklog/ulid/v2"
)

// CreateTask stores a task. Tasks created as Done are stamped completed.
func (s *SQLiteStore) CreateTask(ctx context.Context, in types.NewTask) (*types.Task, error) {
	now := time.Now().UTC()
	t := types.Task{
		ID:          ulid.Make().String(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedAt:   now,
	}
	var completedAt sql.NullString
	if t.Status == types.StatusDone {
		t.CompletedAt = &now
		completedAt = nullString(formatTime(now))
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, category, status, priority, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Category, t.Status, t.Priority, formatTime(now), completedAt)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

// ListTasks returns tasks newest first.
func (s *SQLiteStore) ListTasks(ctx context.Context, opts types.ListOptions) ([]types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, category, status, priority, created_at, completed_at
		FROM tasks
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		var t types.Task
		var createdAt string
		var completedAt sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Status, &t.Priority, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.CreatedAt = parseTime(createdAt)
		t.CompletedAt = parseNullTime(completedAt)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// CreateScreenshot records an uploaded screenshot.
func (s *SQLiteStore) CreateScreenshot(ctx context.Context, in types.NewScreenshot) (*types.Screenshot, error) {
	shot := types.Screenshot{
		ID:            ulid.Make().String(),
		ImageURL:      in.ImageURL,
		Filename:      in.Filename,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Date:          in.Date,
		IsBeforeAfter: in.IsBeforeAfter,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO screenshots (id, image_url, filename, title, description, category, date, is_before_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, shot.ID, shot.ImageURL, shot.Filename, shot.Title, shot.Description, shot.Category,
		shot.Date, shot.IsBeforeAfter, formatTime(shot.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert screenshot: %w", err)
	}
	return &shot, nil
}

// ListScreenshots returns screenshots newest first.
func (s *SQLiteStore) ListScreenshots(ctx context.Context, opts types.ListOptions) ([]types.Screenshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, image_url, filename, title, description, category, date, is_before_after, created_at
		FROM screenshots
		ORDER BY date DESC, created_at DESC, id DESC
		LIMIT ?
	`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query screenshots: %w", err)
	}
	defer rows.Close()

	shots := []types.Screenshot{}
	for rows.Next() {
		var sh types.Screenshot
		var createdAt string
		if err := rows.Scan(&sh.ID, &sh.ImageURL, &sh.Filename, &sh.Title, &sh.Description,
			&sh.Category, &sh.Date, &sh.IsBeforeAfter, &createdAt); err != nil {
			return nil, fmt.Errorf("scan screenshot: %w", err)
		}
		sh.CreatedAt = parseTime(createdAt)
		shots = append(shots, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screenshots: %w", err)
	}
	return shots, nil
}

// CreateDevUpdate stores a dev update. Tags keep their order.
func (s *SQLiteStore) CreateDevUpdate(ctx context.Context, in types.NewDevUpdate) (*types.DevUpdate, error) {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	u := types.DevUpdate{
		ID:        ulid.Make().String(),
		Title:     in.Title,
		Summary:   in.Summary,
		Content:   in.Content,
		Date:      in.Date,
		Tags:      tags,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dev_updates (id, title, summary, content, date, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Title, u.Summary, u.Content, u.Date, string(tagsJSON), formatTime(u.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert dev update: %w", err)
	}
	return &u, nil
}

// ListDevUpdates returns dev updates newest first.
func (s *SQLiteStore) ListDevUpdates(ctx context.Context, opts types.ListOptions) ([]types.DevUpdate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, summary, content, date, tags, created_at
		FROM dev_updates
		ORDER BY date DESC, created_at DESC, id DESC
		LIMIT ?
	`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query dev updates: %w", err)
	}
	defer rows.Close()

	updates := []types.DevUpdate{}
	for rows.Next() {
		var u types.DevUpdate
		var tagsJSON, createdAt string
		if err := rows.Scan(&u.ID, &u.Title, &u.Summary, &u.Content, &u.Date, &tagsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dev update: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &u.Tags); err != nil {
			return nil, fmt.Errorf("parse tags JSON: %w", err)
		}
		u.CreatedAt = parseTime(createdAt)
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dev updates: %w", err)
	}
	return updates, nil
}

// CreateVibeCheck records a vibe check.
func (s *SQLiteStore) CreateVibeCheck(ctx context.Context, in types.NewVibeCheck) (*types.VibeCheck, error) {
	v := types.VibeCheck{
		ID:        ulid.Make().String(),
		Date:      in.Date,
		Status:    in.Status,
		Notes:     in.Notes,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vibe_checks (id, date, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, v.ID, v.Date, v.Status, v.Notes, formatTime(v.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert vibe check: %w", err)
	}
	return &v, nil
}

const vibeQuery = `SELECT id, date, status, notes, created_at FROM vibe_checks
	ORDER BY date DESC, created_at DESC, id DESC LIMIT ?`

func scanVibe(row scanner) (*types.VibeCheck, error) {
	var v types.VibeCheck
	var createdAt string
	if err := row.Scan(&v.ID, &v.Date, &v.Status, &v.Notes, &createdAt); err != nil {
		return nil, err
	}
	v.CreatedAt = parseTime(createdAt)
	return &v, nil
}

// ListVibeChecks returns vibe checks newest first.
func (s *SQLiteStore) ListVibeChecks(ctx context.Context, opts types.ListOptions) ([]types.VibeCheck, error) {
	rows, err := s.db.QueryContext(ctx, vibeQuery, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query vibe checks: %w", err)
	}
	defer rows.Close()

	checks := []types.VibeCheck{}
	for rows.Next() {
		v, err := scanVibe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vibe check: %w", err)
		}
		checks = append(checks, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vibe checks: %w", err)
	}
	return checks, nil
}

// LatestVibeCheck returns the most recent vibe check, or ErrNotFound.
func (s *SQLiteStore) LatestVibeCheck(ctx context.Context) (*types.VibeCheck, error) {
	v, err := scanVibe(s.db.QueryRowContext(ctx, vibeQuery, 1))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan vibe check: %w", err)
	}
	return v, nil
}
