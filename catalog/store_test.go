package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yinyin/crontimesequence/db"
	"github.com/yinyin/crontimesequence/db/models"
	"github.com/yinyin/crontimesequence/scheduler"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := db.DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "catalog.sqlite")
	gdb, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	return NewStore(gdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_SaveGetUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.Save(ctx, Entry{Name: " weekday-morning ", Minute: "0", Hour: "9", Weekday: "1-5"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated id")
	}
	if got, want := rec.Line(), "0 9 * * 1-5"; got != want {
		t.Fatalf("Line() = %q, want %q", got, want)
	}
	if rec.Policy != "open" {
		t.Fatalf("Policy = %q, want open", rec.Policy)
	}

	byName, err := s.Get(ctx, "weekday-morning")
	if err != nil {
		t.Fatalf("Get by name: %v", err)
	}
	byID, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get by id: %v", err)
	}
	if byName.ID != rec.ID || byID.Name != "weekday-morning" {
		t.Fatalf("lookups disagree: %+v %+v", byName, byID)
	}

	updated, err := s.Save(ctx, Entry{Name: "weekday-morning", Minute: "30", Hour: "8", Weekday: "1-5", Policy: "closed", Note: "earlier"})
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if updated.ID != rec.ID {
		t.Fatalf("upsert changed id: %s -> %s", rec.ID, updated.ID)
	}
	if updated.Fingerprint == rec.Fingerprint {
		t.Fatalf("fingerprint should change with fields")
	}

	all, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].Line() != "30 8 * * 1-5" || all[0].Policy != "closed" {
		t.Fatalf("List = %+v", all)
	}
}

func TestStore_SaveValidatesUnderPolicy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Save(ctx, Entry{Name: "bad", Minute: "61", Policy: "closed"})
	if !errors.Is(err, scheduler.ErrRange) {
		t.Fatalf("err = %v, want ErrRange", err)
	}
	if _, err := s.Save(ctx, Entry{Name: "lenient", Minute: "61", Policy: "open"}); err != nil {
		t.Fatalf("fail-open entry should save: %v", err)
	}
	if _, err := s.Save(ctx, Entry{Name: "policy", Policy: "sometimes"}); err == nil {
		t.Fatalf("expected invalid policy error")
	}
	if _, err := s.Save(ctx, Entry{Minute: "1"}); err == nil {
		t.Fatalf("expected missing name error")
	}
}

func TestStore_RemoveAndNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Save(ctx, Entry{Name: "hourly", Minute: "0"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Remove(ctx, "hourly"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(ctx, "hourly"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Remove(ctx, "hourly"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, e := range []Entry{
		{Name: "backup-nightly", Minute: "0", Hour: "2", Note: "database backup"},
		{Name: "report-weekly", Minute: "0", Hour: "8", Weekday: "1", Note: "send report"},
		{Name: "backup-weekly", Minute: "0", Hour: "3", Weekday: "7"},
		{Name: "twin", Minute: "0", Hour: "2"},
	} {
		if _, err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save(%s): %v", e.Name, err)
		}
	}

	got, err := s.List(ctx, ListOptions{Query: "backup"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "backup-nightly" || got[1].Name != "backup-weekly" {
		t.Fatalf("query backup = %v", names(got))
	}

	got, err = s.List(ctx, ListOptions{Query: "weekly REPORT"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Name != "report-weekly" {
		t.Fatalf("query keywords = %v", names(got))
	}

	fp, err := Fingerprint(Entry{Minute: "0", Hour: "2"})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	got, err = s.List(ctx, ListOptions{Fingerprint: fp})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Name != "backup-nightly" || got[1].Name != "twin" {
		t.Fatalf("fingerprint filter = %v", names(got))
	}

	got, err = s.List(ctx, ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("limit 1 returned %d", len(got))
	}

	if _, err := s.List(ctx, ListOptions{OrderBy: "random"}); err == nil {
		t.Fatalf("expected invalid order_by error")
	}
}

func TestStore_Expression(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.Save(ctx, Entry{Name: "weekends", Minute: "19", Hour: "3", Weekday: "6,7"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	e, err := s.Expression(rec)
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	start := time.Date(2012, 7, 20, 10, 39, 20, 0, time.UTC)
	end := time.Date(2012, 8, 22, 23, 5, 27, 0, time.UTC)
	if got := e.Count(start, end); got != 10 {
		t.Fatalf("Count = %d, want 10", got)
	}
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(Entry{Name: "a", Minute: " 0 ", Hour: "9"})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, err := Fingerprint(Entry{Name: "b", Minute: "0", Hour: "9", Day: "*", Policy: "closed", Note: "x"})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if a != b {
		t.Fatalf("fingerprints differ: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("fingerprint %q is not hex sha256", a)
	}
	c, _ := Fingerprint(Entry{Minute: "0", Hour: "10"})
	if a == c {
		t.Fatalf("different fields share a fingerprint")
	}
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "schedules.yaml")
	writeFile(t, yamlPath, `
schedules:
  - name: every-third-hour
    minute: 19
    hour: "*/3"
  - name: weekday-morning
    expr: "0 9 * * 1-5"
    policy: closed
    note: standup
`)
	saved, err := s.ImportFile(ctx, yamlPath)
	if err != nil {
		t.Fatalf("ImportFile yaml: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved %d, want 2", len(saved))
	}
	if saved[0].Line() != "19 */3 * * *" || saved[1].Policy != "closed" || saved[1].Note != "standup" {
		t.Fatalf("saved = %+v", saved)
	}

	jsoncPath := filepath.Join(dir, "schedules.jsonc")
	writeFile(t, jsoncPath, `[
  // last day of each month
  {"name": "month-end", "minute": 0, "hour": 23, "day": "L"},
  {"name": "first-monday", "expr": "0 9 * * 1#1"}, /* block comment */
]`)
	saved, err = s.ImportFile(ctx, jsoncPath)
	if err != nil {
		t.Fatalf("ImportFile jsonc: %v", err)
	}
	if len(saved) != 2 || saved[0].Line() != "0 23 L * *" {
		t.Fatalf("saved = %+v", saved)
	}

	all, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("catalog holds %d, want 4", len(all))
	}
}

func TestImportFile_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	path := filepath.Join(t.TempDir(), "bad.yml")
	writeFile(t, path, `
- name: good
  minute: 5
- name: bad
  minute: "x"
  policy: closed
`)
	if _, err := s.ImportFile(ctx, path); !errors.Is(err, scheduler.ErrSyntax) {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
	if _, err := s.Get(ctx, "good"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("good entry should have been rolled back, err = %v", err)
	}
}

func TestDecodeEntries_Errors(t *testing.T) {
	cases := []struct {
		ext  string
		data string
	}{
		{".toml", `a = 1`},
		{".yaml", `schedules: 5`},
		{".yaml", `- 5`},
		{".yaml", `- minute: 1`},
		{".json", `[{"name": "x", "expr": "1 2 3"}]`},
		{".json", `{`},
	}
	for _, tc := range cases {
		if _, err := DecodeEntries(tc.ext, []byte(tc.data)); err == nil {
			t.Fatalf("DecodeEntries(%s, %q): expected error", tc.ext, tc.data)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func names(items []models.CronSchedule) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
