package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fragmede/hackers/internal/api"
)

// GetItem retrieves a cached item. The bool reports whether it is within ttl.
// A miss returns a nil item and no error.
func (d *DB) GetItem(id int, ttl time.Duration) (*api.Item, bool, error) {
	row := d.db.QueryRow(`SELECT id, type, by_user, time_unix, text, parent_id, url,
		title, score, descendants, kids, dead, deleted, fetched_at
		FROM items WHERE id = ?`, id)

	var item api.Item
	var byUser, text, url, title, kids sql.NullString
	var parentID sql.NullInt64
	var fetchedAt int64
	var dead, deleted int

	err := row.Scan(&item.ID, &item.Type, &byUser, &item.Time, &text, &parentID,
		&url, &title, &item.Score, &item.Descendants, &kids, &dead, &deleted, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	item.By = byUser.String
	item.Text = text.String
	item.URL = url.String
	item.Title = title.String
	item.Dead = dead != 0
	item.Deleted = deleted != 0
	item.Parent = int(parentID.Int64)
	if kids.Valid && kids.String != "" {
		if err := json.Unmarshal([]byte(kids.String), &item.Kids); err != nil {
			d.log.Warn().Err(err).Int("item", id).Msg("discarding malformed kids")
			item.Kids = nil
		}
	}

	return &item, fresh(fetchedAt, ttl), nil
}

const upsertItem = `INSERT OR REPLACE INTO items
	(id, type, by_user, time_unix, text, parent_id, url, title, score, descendants, kids, dead, deleted, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// PutItem stores an item in the cache.
func (d *DB) PutItem(item *api.Item) error {
	return d.PutItems([]*api.Item{item})
}

// PutItems stores a batch of items in one transaction, skipping nils.
func (d *DB) PutItems(items []*api.Item) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertItem)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, item := range items {
		if item == nil {
			continue
		}
		kids, err := json.Marshal(item.Kids)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(item.ID, item.Type, nullStr(item.By), item.Time, nullStr(item.Text),
			nullInt(item.Parent), nullStr(item.URL), nullStr(item.Title),
			item.Score, item.Descendants, string(kids), boolInt(item.Dead), boolInt(item.Deleted), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InvalidateItem drops a cached item so the next read refetches it.
func (d *DB) InvalidateItem(id int) error {
	_, err := d.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	return err
}

func fresh(fetchedAt int64, ttl time.Duration) bool {
	return time.Since(time.Unix(fetchedAt, 0)) < ttl
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(i int) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(i), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
