// README: Smoke and load cases for the travel API; includes HTTP, DB, Redis, and performance checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 3 * time.Minute},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "audit store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "dsn not configured; audit disabled"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "plan store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables declared in the migration exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil),
		httpCaseMethod("API: detailed health", http.MethodGet, base+"/health/detailed", nil, []int{200}, nil),
		httpCaseMethod("API: info", http.MethodGet, base+"/travel/", nil, []int{200}, nil),
		httpCaseMethod("API: metrics", http.MethodGet, base+"/metrics", nil, []int{200}, nil),

		// Plans
		httpCase("Plans: create (valid)", base+"/travel/plans", map[string]any{
			"destination": "Kyoto",
			"duration":    3,
			"budget":      1500,
			"interests":   []string{"temples", "food"},
		}, []int{201}, nil),
		httpCase("Plans: create (missing destination -> 400)", base+"/travel/plans", map[string]any{"duration": 3}, []int{400}, nil),
		httpCaseMethod("Plans: list", http.MethodGet, base+"/travel/plans", nil, []int{200}, nil),
		httpCaseMethod("Plans: unknown id -> 404", http.MethodGet, base+"/travel/plans/plan_does_not_exist", nil, []int{404}, nil),

		// Destinations
		httpCaseMethod("Destinations: list", http.MethodGet, base+"/travel/destinations", nil, []int{200}, nil),
		httpCase("Destinations: add", base+"/travel/destinations", map[string]any{"name": "Lisbon", "country": "Portugal"}, []int{201}, nil),

		// Users
		httpCaseMethod("Users: info", http.MethodGet, base+"/user/", nil, []int{200}, nil),
		httpCase("Users: create", base+"/user/users", map[string]any{"name": "Bench User", "email": "bench@example.com"}, []int{201}, nil),
		httpCase("Users: create (bad email -> 400)", base+"/user/users", map[string]any{"name": "Bench User", "email": "nope"}, []int{400}, nil),
		httpCaseMethod("Users: list", http.MethodGet, base+"/user/users", nil, []int{200}, nil),
		httpCaseMethod("Users: profile", http.MethodGet, base+"/user/profile", nil, []int{200}, nil),
		httpCaseMethod("Users: update profile", http.MethodPut, base+"/user/profile", map[string]any{"preferences": map[string]any{"currency": "EUR"}}, []int{200}, nil),

		// Validation never reaches a provider.
		httpCase("Itinerary: explicit num_days 0 -> 400", base+"/travel/itinerary", map[string]any{
			"home_city":        "Boston",
			"destination_city": "Kyoto",
			"num_days":         0,
		}, []int{400}, nil),
		httpCase("Itinerary: num_days out of range -> 400", base+"/travel/itinerary", map[string]any{
			"home_city":        "Boston",
			"destination_city": "Kyoto",
			"num_days":         30,
		}, []int{400}, nil),
		httpCase("Options: bad recency filter -> 400", base+"/travel/options", map[string]any{
			"origin_city":      "Paris",
			"destination_city": "Lyon",
			"recency_filter":   "decade",
		}, []int{400}, nil),

		// Maps helpers answer 503 without a key.
		httpCaseMethod("Maps: route estimate", http.MethodGet, base+"/travel/route-estimate?origin=Paris&destination=Lyon", nil, []int{200}, []int{503}),
		httpCaseMethod("Maps: unsupported mode -> 400", http.MethodGet, base+"/travel/route-estimate?origin=Paris&destination=Lyon&mode=teleport", nil, []int{400}, []int{503}),
		httpCaseMethod("Maps: places", http.MethodGet, base+"/travel/places?city=Kyoto&query=tea+house", nil, []int{200}, []int{503}),
		httpCaseMethod("Audit: summary", http.MethodGet, base+"/travel/audit/summary", nil, []int{200}, []int{503}),

		// Generation (paid providers)
		r.generateCase("Itinerary: Boston -> Kyoto", base+"/travel/itinerary", map[string]any{
			"home_city":        "Boston",
			"destination_city": "Kyoto",
			"num_days":         2,
			"interests":        []string{"temples"},
		}),
		r.generateCase("Options: Paris -> Lyon", base+"/travel/options", map[string]any{
			"origin_city":      "Paris",
			"destination_city": "Lyon",
		}),

		// Concurrency
		{
			Name:  "Concurrency: plan ids unique",
			Focus: "concurrent creates never share an id",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentCreate(ctx, r, base+"/travel/plans")
			},
		},

		// Performance
		{
			Name:  "Perf: plan create throughput",
			Focus: "plan store write path",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/travel/plans", map[string]any{
					"destination": "Bali",
					"duration":    5,
				})
			},
		},
	}
}

func (r *Runner) generateCase(name, url string, body any) TestCase {
	if !r.cfg.Generate {
		return manualCase(name, "generate=false")
	}
	return httpCase(name, url, body, []int{200}, []int{503})
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			if contains(pendingStatuses, resp.StatusCode) {
				return Result{Status: "PENDING", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: "SKIP", Note: note}
		},
	}
}

func concurrentCreate(ctx context.Context, r *Runner, url string) Result {
	b, _ := json.Marshal(map[string]any{"destination": "Oslo", "duration": 2})
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	seen := map[string]int{}
	failed := 0

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			defer resp.Body.Close()
			var out struct {
				Plan struct {
					ID string `json:"id"`
				} `json:"plan"`
			}
			decodeErr := json.NewDecoder(resp.Body).Decode(&out)
			mu.Lock()
			if resp.StatusCode != http.StatusCreated || decodeErr != nil {
				failed++
			} else {
				seen[out.Plan.ID]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	for id, n := range seen {
		if n > 1 {
			return Result{Status: "FAIL", Note: fmt.Sprintf("id %s issued %d times", id, n)}
		}
	}
	if failed > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("failed=%d", failed)}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("created=%d", len(seen))}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
