package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	pkgch "KPIPulse/pkg/clickhouse"
	applogger "KPIPulse/pkg/logger"
)

// CHObservationStore implements ObservationStore backed by ClickHouse.
type CHObservationStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHObservationStore(ch *pkgch.Client, table string) *CHObservationStore {
	return &CHObservationStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

// GetObservations returns the most recent observations for a scope, oldest
// first. An empty category matches all categories.
func (s *CHObservationStore) GetObservations(ctx context.Context, scopeID, category string, limit int) ([]models.Observation, error) {
	start := time.Now()

	q := fmt.Sprintf(`
        SELECT scope_id, category, value, period
        FROM %s
        WHERE scope_id = ?
        ORDER BY period DESC
        LIMIT ?
    `, s.table)
	args := []interface{}{scopeID, limit}
	if category != "" {
		q = fmt.Sprintf(`
        SELECT scope_id, category, value, period
        FROM %s
        WHERE scope_id = ? AND category = ?
        ORDER BY period DESC
        LIMIT ?
    `, s.table)
		args = []interface{}{scopeID, category, limit}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_observations query error",
				applogger.String("table", s.table),
				applogger.String("scope", scopeID),
				applogger.String("category", category),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get observations: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Observation, 0, limit)
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ScopeID, &o.Category, &o.Value, &o.Period); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_observations scan error",
					applogger.String("table", s.table),
					applogger.String("scope", scopeID),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		tmp = append(tmp, o)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_observations rows error",
				applogger.String("table", s.table),
				applogger.String("scope", scopeID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}

	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse get_observations ok",
			applogger.String("table", s.table),
			applogger.String("scope", scopeID),
			applogger.String("category", category),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}
