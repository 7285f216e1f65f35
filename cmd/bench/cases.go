// README: Smoke-check cases for the API endpoints, DB schema, and Redis cache.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
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
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 60 * time.Second},
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
		res.Name = tc.Name
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
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
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
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
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
			Name: "Migration: apply (optional)",
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
				for _, stmt := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, stmt); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: ai_quota table exists",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
					"ai_quota",
				).Scan(&exists)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if !exists {
					return Result{Status: "FAIL", Note: "missing table: ai_quota"}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				resp, err := r.httpc.Get(base + "/health")
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				_ = resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status=%d", resp.StatusCode)}
				}
				return Result{Status: "PASS", Latency: time.Since(start)}
			},
		},

		httpCase("API: route_suggestions missing fields -> 400", base+"/api/route_suggestions",
			map[string]any{}, []int{400, 503}),

		httpCase("API: route_suggestions unknown category -> 400", base+"/api/route_suggestions",
			map[string]any{"origin": "กรุงเทพ", "destination": "เชียงใหม่", "categories": []string{"ไม่มีหมวดนี้"}},
			[]int{400}),

		httpCase("API: search_by_province missing province -> 400", base+"/api/search_by_province",
			map[string]any{}, []int{400, 503}),

		httpCase("API: gemini_chat missing message -> 400", base+"/api/gemini_chat",
			map[string]any{}, []int{400}),

		// Live checks call the real providers; they cost quota and need keys.
		liveCase(r.cfg, "API: route_suggestions live", base+"/api/route_suggestions",
			map[string]any{"origin": "กรุงเทพ", "destination": "อยุธยา", "categories": []string{"คาเฟ่"}},
			[]int{200}),

		liveCase(r.cfg, "API: search_by_province live", base+"/api/search_by_province",
			map[string]any{"province": "อยุธยา"}, []int{200}),

		liveCase(r.cfg, "API: gemini_chat live", base+"/api/gemini_chat",
			map[string]any{"message": "เที่ยวอยุธยาหนึ่งวันไปไหนดี"}, []int{200}),

		{
			Name: "Redis: weather cache round-trip",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				key := "teaw:weather:bench"
				if err := r.redis.Set(ctx, key, `{"temp_c":30}`, time.Minute).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				val, err := r.redis.Get(ctx, key).Result()
				if err != nil || !strings.Contains(val, "temp_c") {
					return Result{Status: "FAIL", Note: fmt.Sprintf("get: %v", err)}
				}
				_ = r.redis.Del(ctx, key).Err()
				return Result{Status: "PASS"}
			},
		},
	}
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			return r.post(ctx, url, body, okStatuses)
		},
	}
}

// liveCase is skipped unless -live is set; it exercises real provider calls.
func liveCase(cfg Config, name, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if !cfg.Live {
				return Result{Status: "SKIP", Note: "live=false"}
			}
			return r.post(ctx, url, body, okStatuses)
		},
	}
}

func (r *Runner) post(ctx context.Context, url string, body any, okStatuses []int) Result {
	buf, err := json.Marshal(body)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer resp.Body.Close()

	for _, ok := range okStatuses {
		if resp.StatusCode == ok {
			return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		}
	}
	return Result{Status: "FAIL", Latency: time.Since(start), Note: fmt.Sprintf("status=%d", resp.StatusCode)}
}

func splitSQL(sql string) []string {
	parts := strings.Split(sql, ";")
	var stmts []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			stmts = append(stmts, p)
		}
	}
	return stmts
}
