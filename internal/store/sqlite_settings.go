package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/devtrack/internal/types"
)

// defaultSettings is what GetSettings returns before anything was saved.
func defaultSettings() *types.GameInfoSettings {
	return &types.GameInfoSettings{NewsletterEnabled: true}
}

func loadSettings(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}) (*types.GameInfoSettings, error) {
	var st types.GameInfoSettings
	var updatedAt sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT game_description, project_description, youtube_playlist_id,
		       linkedin_url, discord_url, wishlist_url, newsletter_enabled, updated_at
		FROM settings WHERE id = 1
	`).Scan(&st.GameDescription, &st.ProjectDescription, &st.YoutubePlaylistID,
		&st.LinkedinURL, &st.DiscordURL, &st.WishlistURL, &st.NewsletterEnabled, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan settings: %w", err)
	}
	st.UpdatedAt = parseNullTime(updatedAt)
	return &st, nil
}

// GetSettings returns the settings document, or the defaults if none was saved.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*types.GameInfoSettings, error) {
	return loadSettings(ctx, s.db)
}

// UpdateSettings merges patch into the stored settings and returns the result.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, patch types.SettingsPatch) (*types.GameInfoSettings, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	st, err := loadSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	patch.Apply(st)
	now := time.Now().UTC()
	st.UpdatedAt = &now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO settings (id, game_description, project_description, youtube_playlist_id,
		                      linkedin_url, discord_url, wishlist_url, newsletter_enabled, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			game_description = excluded.game_description,
			project_description = excluded.project_description,
			youtube_playlist_id = excluded.youtube_playlist_id,
			linkedin_url = excluded.linkedin_url,
			discord_url = excluded.discord_url,
			wishlist_url = excluded.wishlist_url,
			newsletter_enabled = excluded.newsletter_enabled,
			updated_at = excluded.updated_at
	`, st.GameDescription, st.ProjectDescription, st.YoutubePlaylistID,
		st.LinkedinURL, st.DiscordURL, st.WishlistURL, st.NewsletterEnabled, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return st, nil
}
