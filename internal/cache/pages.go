package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fragmede/hackers/internal/api"
)

// GetCommentPage returns a scraped item page. Comment visibility is not
// stored; every cached page comes back fully expanded.
func (d *DB) GetCommentPage(storyID int, ttl time.Duration) (*api.Page, bool, error) {
	var raw string
	var fetchedAt int64
	err := d.db.QueryRow(`SELECT page, fetched_at FROM comment_pages WHERE story_id = ?`, storyID).
		Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var page api.Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, false, fmt.Errorf("decoding cached page %d: %w", storyID, err)
	}
	return &page, fresh(fetchedAt, ttl), nil
}

// PutCommentPage stores a scraped page.
func (d *DB) PutCommentPage(page *api.Page) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO comment_pages (story_id, page, fetched_at) VALUES (?, ?, ?)`,
		page.Post.ID, string(raw), time.Now().Unix())
	return err
}

// InvalidateCommentPage drops a cached page. Called after a vote so stale
// vote links and scores are not served back.
func (d *DB) InvalidateCommentPage(storyID int) error {
	_, err := d.db.Exec(`DELETE FROM comment_pages WHERE story_id = ?`, storyID)
	if err == nil {
		d.log.Debug().Int("story", storyID).Msg("comment page invalidated")
	}
	return err
}
