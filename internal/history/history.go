package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/happy-v587/github-trending/internal/cache"
)

const dayLayout = "2006-01-02"

// Archive records which repositories appeared on which listing, one row per
// repository, listing and day.
type Archive struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// Listing identifies the page a set of repositories was taken from.
type Listing struct {
	Language string
	Since    string
}

// Appearance is one day a repository spent on a listing.
type Appearance struct {
	Name       string
	Listing    Listing
	Day        string
	Rank       int
	Stars      int
	StarsToday int
	Forks      int
	Language   string
	FetchedAt  time.Time
}

// Persistent summarises a repository's presence across days.
type Persistent struct {
	Name     string
	Language string
	Days     int
	BestRank int
	LastSeen string
}

func Open(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	a := &Archive{readDB: readDB, writeDB: writeDB}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	_, err := a.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS appearances (
			name            TEXT NOT NULL,
			language_filter TEXT NOT NULL DEFAULT '',
			since           TEXT NOT NULL,
			day             TEXT NOT NULL,
			rank            INTEGER NOT NULL,
			stars           INTEGER NOT NULL DEFAULT 0,
			stars_today     INTEGER NOT NULL DEFAULT 0,
			forks           INTEGER NOT NULL DEFAULT 0,
			language        TEXT NOT NULL DEFAULT '',
			fetched_at      DATETIME NOT NULL,
			PRIMARY KEY (name, language_filter, since, day)
		);
		CREATE INDEX IF NOT EXISTS idx_appearances_day ON appearances(day DESC);
		CREATE INDEX IF NOT EXISTS idx_appearances_name ON appearances(name);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	return errors.Join(closeDB(a.readDB), closeDB(a.writeDB))
}

func closeDB(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// Record stores repos as the listing's state for the day of at. Re-recording
// the same day keeps the latest numbers.
func (a *Archive) Record(l Listing, repos []cache.Repository, at time.Time) error {
	tx, err := a.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO appearances (name, language_filter, since, day, rank, stars, stars_today, forks, language, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, language_filter, since, day) DO UPDATE SET
			rank = excluded.rank,
			stars = excluded.stars,
			stars_today = excluded.stars_today,
			forks = excluded.forks,
			language = excluded.language,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	day := at.Format(dayLayout)
	for _, r := range repos {
		_, err := stmt.Exec(r.Name, l.Language, l.Since, day, r.Rank, r.Stars, r.StarsToday, r.Forks, r.Language, at.UTC())
		if err != nil {
			return fmt.Errorf("recording %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// Appearances lists every recorded day for one repository, newest first.
func (a *Archive) Appearances(name string) ([]Appearance, error) {
	rows, err := a.readDB.Query(`
		SELECT name, language_filter, since, day, rank, stars, stars_today, forks, language, fetched_at
		FROM appearances WHERE name = ?
		ORDER BY day DESC, since, language_filter`, name)
	if err != nil {
		return nil, fmt.Errorf("querying appearances: %w", err)
	}
	defer rows.Close()

	var out []Appearance
	for rows.Next() {
		var ap Appearance
		if err := rows.Scan(&ap.Name, &ap.Listing.Language, &ap.Listing.Since, &ap.Day, &ap.Rank,
			&ap.Stars, &ap.StarsToday, &ap.Forks, &ap.Language, &ap.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning appearance: %w", err)
		}
		out = append(out, ap)
	}
	return out, rows.Err()
}

// MostPersistent ranks repositories by the number of distinct days they were
// seen on any listing since the given time.
func (a *Archive) MostPersistent(since time.Time, limit int) ([]Persistent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.readDB.Query(`
		SELECT name, MAX(language), COUNT(DISTINCT day), MIN(rank), MAX(day)
		FROM appearances
		WHERE day >= ?
		GROUP BY name
		ORDER BY COUNT(DISTINCT day) DESC, MIN(rank) ASC, name ASC
		LIMIT ?`, since.Format(dayLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Persistent
	for rows.Next() {
		var p Persistent
		if err := rows.Scan(&p.Name, &p.Language, &p.Days, &p.BestRank, &p.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prune deletes appearances older than the retention window.
func (a *Archive) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Format(dayLayout)
	res, err := a.writeDB.Exec(`DELETE FROM appearances WHERE day < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := a.writeDB.Exec(`VACUUM`); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

// Stats reports the number of stored appearances and the database file size.
func (a *Archive) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := a.readDB.QueryRow(`SELECT COUNT(*) FROM appearances`).Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting appearances: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, info.Size(), nil
}
