package logic

import (
	"context"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

// MockCHConn implements driver.Conn for testing
type MockCHConn struct {
	driver.Conn
	QueryFunc func(ctx context.Context, query string, args ...interface{}) (driver.Rows, error)
	Batch     *MockCHBatch
}

func (m *MockCHConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query, args...)
	}
	return &MockCHRows{}, nil
}

func (m *MockCHConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	if m.Batch == nil {
		m.Batch = &MockCHBatch{}
	}
	return m.Batch, nil
}

// MockCHBatch implements driver.Batch for testing
type MockCHBatch struct {
	driver.Batch
	Appended [][]interface{}
	Sent     bool
}

func (m *MockCHBatch) Append(v ...interface{}) error {
	m.Appended = append(m.Appended, v)
	return nil
}

func (m *MockCHBatch) Send() error {
	m.Sent = true
	return nil
}

// MockCHRows implements driver.Rows for testing
type MockCHRows struct {
	driver.Rows
	Data  [][]interface{}
	Index int
}

func (m *MockCHRows) Next() bool {
	m.Index++
	return m.Index <= len(m.Data)
}

func (m *MockCHRows) Scan(dest ...interface{}) error {
	row := m.Data[m.Index-1]
	for i, val := range row {
		if i < len(dest) {
			setDest(dest[i], val)
		}
	}
	return nil
}

func (m *MockCHRows) Close() error { return nil }
func (m *MockCHRows) Err() error   { return nil }

func TestRunChecksLogsEveryCheck(t *testing.T) {
	pool := &MockPgPool{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &MockPgRow{Values: []any{uint64(0), uint64(12)}}
		},
	}
	ch := &MockCHConn{}
	s := NewQualityGateService(pool, ch, zap.NewNop(), 0)

	results, err := s.RunChecks(context.Background(), "games", "2026-01-10")
	if err != nil {
		t.Fatalf("RunChecks() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 declared checks for games", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %s failed with zero failures", r.CheckName)
		}
		if r.RunID != results[0].RunID {
			t.Error("checks of one run carry different run ids")
		}
	}
	if !ch.Batch.Sent {
		t.Error("results not flushed to the quality log")
	}
	if len(ch.Batch.Appended) != 2 {
		t.Errorf("log rows = %d, want 2", len(ch.Batch.Appended))
	}
}

func TestRunChecksFailsOverThreshold(t *testing.T) {
	pool := &MockPgPool{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &MockPgRow{Values: []any{uint64(3), uint64(12)}}
		},
	}
	s := NewQualityGateService(pool, &MockCHConn{}, zap.NewNop(), 0.1)

	results, err := s.RunChecks(context.Background(), "team_daily_stats", "2026-01-10")
	if err != nil {
		t.Fatalf("RunChecks() error = %v", err)
	}
	for _, r := range results {
		if r.Passed {
			t.Errorf("check %s passed at 25%% failure rate over a 10%% threshold", r.CheckName)
		}
		if !almostEqual(r.FailureRate, 0.25) {
			t.Errorf("FailureRate = %v, want 0.25", r.FailureRate)
		}
	}
}

func TestRunChecksUnknownTable(t *testing.T) {
	s := NewQualityGateService(&MockPgPool{}, &MockCHConn{}, zap.NewNop(), 0)
	if _, err := s.RunChecks(context.Background(), "nope", "2026-01-10"); err == nil {
		t.Error("RunChecks() accepted unknown table, want error")
	}
}

func TestGateStatus(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
		want string
	}{
		{
			name: "all passed",
			rows: [][]interface{}{
				{"final_games_have_scores", uint8(1)},
				{"teams_are_distinct", uint8(1)},
			},
			want: models.GateStatusPassed,
		},
		{
			name: "one failed",
			rows: [][]interface{}{
				{"final_games_have_scores", uint8(1)},
				{"teams_are_distinct", uint8(0)},
			},
			want: models.GateStatusFailed,
		},
		{
			name: "never checked",
			rows: [][]interface{}{},
			want: models.GateStatusUnknown,
		},
		{
			name: "partial coverage",
			rows: [][]interface{}{
				{"final_games_have_scores", uint8(1)},
			},
			want: models.GateStatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &MockCHConn{
				QueryFunc: func(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
					return &MockCHRows{Data: tt.rows}, nil
				},
			}
			s := NewQualityGateService(&MockPgPool{}, ch, zap.NewNop(), 0)

			got, err := s.GateStatus(context.Background(), "games", "2026-01-10")
			if err != nil {
				t.Fatalf("GateStatus() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GateStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckProbabilityRangeUsesStructValidation(t *testing.T) {
	pool := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &MockPgRows{Data: [][]any{
				{"g1", "model-1", "LAL", 0.65},
				{"g2", "model-1", "BOS", 1.40},
			}}, nil
		},
	}
	s := NewQualityGateService(pool, &MockCHConn{}, zap.NewNop(), 0).(*qualityService)

	failed, total, err := s.checkProbabilityRange(context.Background(), "2026-01-10")
	if err != nil {
		t.Fatalf("checkProbabilityRange() error = %v", err)
	}
	if total != 2 || failed != 1 {
		t.Errorf("failed/total = %d/%d, want 1/2", failed, total)
	}
}
