// README: Audit module tests; DB-backed cases skip without WAYFARER_TEST_DSN.
package audit

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"wayfarer/internal/ai"
)

func TestDisabledServiceIsNoop(t *testing.T) {
	svc := NewService(nil)
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if err := svc.Record(context.Background(), ai.CallRecord{Provider: "gemini"}); err != nil {
		t.Fatalf("Record on disabled service: %v", err)
	}
	if _, err := svc.Summary(context.Background(), time.Hour); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

// TestRecordAndSummary stores calls from two providers and reads the aggregate back.
func TestRecordAndSummary(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	records := []ai.CallRecord{
		{Provider: "gemini", Model: "gemini-2.5-pro", Outcome: "parsed", Duration: 100 * time.Millisecond},
		{Provider: "gemini", Model: "gemini-2.5-pro", Outcome: "parsed", Duration: 300 * time.Millisecond},
		{Provider: "gemini", Model: "gemini-2.5-pro", Outcome: "fallback", Reason: "timeout", Duration: time.Second},
		{Provider: "perplexity", Model: "sonar", Outcome: "ok", Duration: 50 * time.Millisecond},
	}
	for _, r := range records {
		if err := svc.Record(ctx, r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	rows, err := svc.Summary(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 summary rows, got %d: %+v", len(rows), rows)
	}
	first := rows[0]
	if first.Provider != "gemini" || first.Outcome != "fallback" || first.Calls != 1 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	parsed := rows[1]
	if parsed.Calls != 2 || parsed.AvgDurationMS != 200 {
		t.Fatalf("unexpected parsed row: %+v", parsed)
	}
}

// TestSummaryWindowExcludesOldEntries backdates one entry past the window.
func TestSummaryWindowExcludesOldEntries(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	store := NewStore(db)
	if err := store.Insert(ctx, Entry{Provider: "gemini", Model: "m", Outcome: "raw", CreatedAt: time.Now().Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Record(ctx, ai.CallRecord{Provider: "gemini", Model: "m", Outcome: "raw"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	rows, err := svc.Summary(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(rows) != 1 || rows[0].Calls != 1 {
		t.Fatalf("expected one recent call, got %+v", rows)
	}
}

// setupTestService creates a real postgres-backed Service.
// It skips the test when WAYFARER_TEST_DSN is not set.
func setupTestService(t *testing.T) (*Service, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("WAYFARER_TEST_DSN")
	if dsn == "" {
		t.Skip("WAYFARER_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigrations(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE generation_audit"); err != nil {
		t.Fatalf("truncate generation_audit: %v", err)
	}

	return NewService(NewStore(db)), db
}

func applyMigrations(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_generation_audit.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
