package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fragmede/hackers/internal/api"
)

// GetStoryList retrieves cached story IDs for a feed.
// Returns (ids, isFresh, error). ids is nil on cache miss.
func (d *DB) GetStoryList(st api.StoryType, ttl time.Duration) ([]int, bool, error) {
	row := d.db.QueryRow(`SELECT item_ids, fetched_at FROM story_lists WHERE list_type = ?`, string(st))

	var idsJSON string
	var fetchedAt int64
	err := row.Scan(&idsJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ids []int
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		return nil, false, err
	}
	return ids, fresh(fetchedAt, ttl), nil
}

// PutStoryList stores a feed's ID list.
func (d *DB) PutStoryList(st api.StoryType, ids []int) error {
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO story_lists (list_type, item_ids, fetched_at) VALUES (?, ?, ?)`,
		string(st), string(idsJSON), time.Now().Unix())
	return err
}

// InvalidateStoryList forces the next load of st to go to the network.
func (d *DB) InvalidateStoryList(st api.StoryType) error {
	_, err := d.db.Exec(`DELETE FROM story_lists WHERE list_type = ?`, string(st))
	return err
}
