package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/happy-v587/github-trending/internal/cache"
)

func testDB(t *testing.T) *Archive {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRepos() []cache.Repository {
	return []cache.Repository{
		{Rank: 1, Name: "acme/rocket", Language: "Go", Stars: 1000, StarsToday: 100, Forks: 10},
		{Rank: 2, Name: "foo/bar", Language: "Rust", Stars: 500, StarsToday: 50, Forks: 5},
		{Rank: 3, Name: "baz/qux", Language: "Python", Stars: 50, StarsToday: 5, Forks: 1},
	}
}

var daily = Listing{Since: "daily"}

func TestRecordAndAppearances(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	if err := db.Record(daily, sampleRepos(), now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("record yesterday: %v", err)
	}
	if err := db.Record(daily, sampleRepos()[:1], now); err != nil {
		t.Fatalf("record today: %v", err)
	}

	got, err := db.Appearances("acme/rocket")
	if err != nil {
		t.Fatalf("appearances: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 appearances, got %d", len(got))
	}
	// Newest day first
	if got[0].Day != now.Format(dayLayout) {
		t.Errorf("expected today first, got %s", got[0].Day)
	}
	if got[0].Listing.Since != "daily" || got[0].Stars != 1000 {
		t.Errorf("unexpected appearance: %+v", got[0])
	}
}

func TestRecordSameDayUpdates(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	if err := db.Record(daily, sampleRepos(), now); err != nil {
		t.Fatalf("first record: %v", err)
	}
	updated := sampleRepos()
	updated[0].Stars = 1500
	updated[0].Rank = 2
	if err := db.Record(daily, updated[:1], now.Add(time.Minute)); err != nil {
		t.Fatalf("second record: %v", err)
	}

	got, _ := db.Appearances("acme/rocket")
	if len(got) != 1 {
		t.Fatalf("expected a single row for the same day, got %d", len(got))
	}
	if got[0].Stars != 1500 || got[0].Rank != 2 {
		t.Errorf("expected updated numbers, got %+v", got[0])
	}
}

func TestRecordSeparatesListings(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	db.Record(daily, sampleRepos()[:1], now)
	db.Record(Listing{Language: "go", Since: "weekly"}, sampleRepos()[:1], now)

	got, _ := db.Appearances("acme/rocket")
	if len(got) != 2 {
		t.Errorf("expected one row per listing, got %d", len(got))
	}
}

func TestMostPersistent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		db.Record(daily, sampleRepos()[:1], now.AddDate(0, 0, -i))
	}
	db.Record(daily, sampleRepos()[1:], now)

	got, err := db.MostPersistent(now.AddDate(0, 0, -7), 10)
	if err != nil {
		t.Fatalf("MostPersistent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 repos, got %d", len(got))
	}
	if got[0].Name != "acme/rocket" || got[0].Days != 3 || got[0].BestRank != 1 {
		t.Errorf("unexpected leader: %+v", got[0])
	}
	if got[1].Name != "foo/bar" {
		t.Errorf("expected ties ordered by best rank, got %s", got[1].Name)
	}

	limited, _ := db.MostPersistent(now.AddDate(0, 0, -7), 1)
	if len(limited) != 1 {
		t.Errorf("expected limit 1, got %d", len(limited))
	}

	recent, _ := db.MostPersistent(now, 10)
	if len(recent) != 3 || recent[0].Days != 1 {
		t.Errorf("expected only today's rows, got %+v", recent)
	}
}

func TestPruneDeletesOldAppearances(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	db.Record(daily, sampleRepos(), now)
	db.Record(daily, sampleRepos()[:1], now.AddDate(0, 0, -10))

	deleted, err := db.Prune(5 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}

	got, _ := db.Appearances("acme/rocket")
	if len(got) != 1 {
		t.Errorf("expected 1 remaining appearance, got %d", len(got))
	}
}

func TestPruneNothingToDelete(t *testing.T) {
	db := testDB(t)
	db.Record(daily, sampleRepos(), time.Now())

	deleted, err := db.Prune(365 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 pruned, got %d", deleted)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.Record(daily, sampleRepos(), time.Now()); err != nil {
		t.Fatalf("record: %v", err)
	}

	count, size, err := db.Stats(dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
	if size == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestEmptyArchive(t *testing.T) {
	db := testDB(t)
	got, err := db.Appearances("nobody/nothing")
	if err != nil {
		t.Fatalf("appearances: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no appearances, got %d", len(got))
	}
}

func TestOpenCreatesDir(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "deep", "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("opening db in nested dir: %v", err)
	}
	db.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}
