package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
	"github.com/oklog/ulid/v2"
)

// AddSubscriber adds email to the newsletter. Emails are compared
// case-insensitively; a repeat signup returns ErrDuplicateSubscriber.
func (s *SQLiteStore) AddSubscriber(ctx context.Context, email string) (*types.NewsletterSubscriber, error) {
	sub := types.NewsletterSubscriber{
		ID:           ulid.Make().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		SubscribedAt: time.Now().UTC(),
		IsActive:     true,
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO newsletter_subscribers (id, email, subscribed_at, is_active)
		VALUES (?, ?, ?, 1)
		ON CONFLICT DO NOTHING
	`, sub.ID, sub.Email, formatTime(sub.SubscribedAt))
	if err != nil {
		return nil, fmt.Errorf("insert subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrDuplicateSubscriber
	}
	return &sub, nil
}

// ListSubscribers returns subscribers newest first.
func (s *SQLiteStore) ListSubscribers(ctx context.Context, opts types.ListOptions) ([]types.NewsletterSubscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, subscribed_at, is_active
		FROM newsletter_subscribers
		ORDER BY subscribed_at DESC, id DESC
		LIMIT ?
	`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	subs := []types.NewsletterSubscriber{}
	for rows.Next() {
		var sub types.NewsletterSubscriber
		var subscribedAt string
		if err := rows.Scan(&sub.ID, &sub.Email, &subscribedAt, &sub.IsActive); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		sub.SubscribedAt = parseTime(subscribedAt)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, nil
}

// RecordContributionClick logs one click on a contribute button.
func (s *SQLiteStore) RecordContributionClick(ctx context.Context, in types.NewContributionClick) (*types.ContributionClick, error) {
	c := types.ContributionClick{
		ID:        ulid.Make().String(),
		ItemID:    in.ItemID,
		ItemName:  in.ItemName,
		Amount:    in.Amount,
		Timestamp: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contribution_clicks (id, item_id, item_name, amount, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.ItemID, c.ItemName, c.Amount, formatTime(c.Timestamp))
	if err != nil {
		return nil, fmt.Errorf("insert contribution click: %w", err)
	}
	return &c, nil
}

// ListContributionClicks returns clicks newest first.
func (s *SQLiteStore) ListContributionClicks(ctx context.Context, opts types.ListOptions) ([]types.ContributionClick, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, item_name, amount, timestamp
		FROM contribution_clicks
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limitArg(opts))
	if err != nil {
		return nil, fmt.Errorf("query contribution clicks: %w", err)
	}
	defer rows.Close()

	clicks := []types.ContributionClick{}
	for rows.Next() {
		var c types.ContributionClick
		var ts string
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ItemName, &c.Amount, &ts); err != nil {
			return nil, fmt.Errorf("scan contribution click: %w", err)
		}
		c.Timestamp = parseTime(ts)
		clicks = append(clicks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contribution clicks: %w", err)
	}
	return clicks, nil
}

// SummarizeContributions counts clicks and sums amounts per item,
// most-clicked first.
func (s *SQLiteStore) SummarizeContributions(ctx context.Context) ([]types.ContributionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, MAX(item_name), COUNT(*), COALESCE(SUM(amount), 0)
		FROM contribution_clicks
		GROUP BY item_id
		ORDER BY COUNT(*) DESC, item_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query contribution summary: %w", err)
	}
	defer rows.Close()

	summary := []types.ContributionSummary{}
	for rows.Next() {
		var cs types.ContributionSummary
		if err := rows.Scan(&cs.ItemID, &cs.ItemName, &cs.Clicks, &cs.Amount); err != nil {
			return nil, fmt.Errorf("scan contribution summary: %w", err)
		}
		summary = append(summary, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contribution summary: %w", err)
	}
	return summary, nil
}
