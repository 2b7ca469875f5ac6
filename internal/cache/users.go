package cache

import (
	"database/sql"
	"errors"
	"time"

	"github.com/fragmede/hackers/internal/api"
)

// errNoUserID is returned when a profile without a username is stored.
var errNoUserID = errors.New("user has no id")

// GetUser returns the cached profile for username and whether it is younger
// than ttl. A miss is (nil, false, nil).
func (d *DB) GetUser(username string, ttl time.Duration) (*api.User, bool, error) {
	var (
		u         = api.User{ID: username}
		about     sql.NullString
		fetchedAt int64
	)
	err := d.db.QueryRow(`SELECT created, karma, about, fetched_at FROM users WHERE id = ?`, username).
		Scan(&u.Created, &u.Karma, &about, &fetchedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	u.About = about.String
	return &u, fresh(fetchedAt, ttl), nil
}

// PutUser stores a profile, refreshing its fetch time. The karma display
// only ever writes the logged-in user.
func (d *DB) PutUser(u *api.User) error {
	if u == nil || u.ID == "" {
		return errNoUserID
	}
	_, err := d.db.Exec(`INSERT INTO users (id, created, karma, about, fetched_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created = excluded.created,
			karma = excluded.karma,
			about = excluded.about,
			fetched_at = excluded.fetched_at`,
		u.ID, u.Created, u.Karma, nullStr(u.About), time.Now().Unix())
	return err
}
