package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func verdictColumn(v models.Verdict) (string, error) {
	switch v {
	case models.VerdictCorrect:
		return "stat_correct", nil
	case models.VerdictAlmostCorrect:
		return "stat_almost_correct", nil
	case models.VerdictIncorrect:
		return "stat_incorrect", nil
	}
	return "", fmt.Errorf("unknown verdict %q", v)
}

func (r *statsRepository) Increment(ctx context.Context, itemID int64, verdict models.Verdict) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("incrementing statistics: item_id=%d, verdict=%s", itemID, verdict)

	col, err := verdictColumn(verdict)
	if err != nil {
		log.Error("%v", err)
		return err
	}
	query, args, err := sqlBuilder.Update("items").
		Set(col, squirrel.Expr(col+" + 1")).
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to increment statistics: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The item was deleted while its session was still open.
		log.Warn("statistics not updated, item %d no longer exists", itemID)
	}
	return nil
}

func (r *statsRepository) InsertSessionResult(ctx context.Context, result models.SessionResult) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("inserting session result: deck_id=%d, score=%d/%d", result.DeckID, result.Correct, result.Total)

	finishedAt := result.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO session_results (deck_id, direction, correct, total, finished_at)
VALUES (?, ?, ?, ?, ?)
`, result.DeckID, result.Direction, result.Correct, result.Total, finishedAt)
	if err != nil {
		log.Error("failed to insert session result: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get session result id: %v", err)
		return 0, err
	}
	log.Debug("session result inserted: id=%d", id)
	return id, nil
}

func (r *statsRepository) ListSessionResults(ctx context.Context, deckID int64, limit int) ([]models.SessionResult, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("listing session results: deck_id=%d, limit=%d", deckID, limit)

	if limit <= 0 {
		limit = 50
	}
	query, args, err := sqlBuilder.
		Select("id", "deck_id", "direction", "correct", "total", "finished_at").
		From("session_results").
		Where(squirrel.Eq{"deck_id": deckID}).
		OrderBy("finished_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list session results: %v", err)
		return nil, err
	}
	defer rows.Close()

	var results []models.SessionResult
	for rows.Next() {
		var sr models.SessionResult
		if err := rows.Scan(&sr.ID, &sr.DeckID, &sr.Direction, &sr.Correct, &sr.Total, &sr.FinishedAt); err != nil {
			log.Error("failed to scan session result row: %v", err)
			return nil, err
		}
		results = append(results, sr)
	}
	log.Debug("found %d session results", len(results))
	return results, rows.Err()
}
