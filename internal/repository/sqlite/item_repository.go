package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

var itemColumns = []string{
	"id", "deck_id", "kind", "word", "translation", "language", "target_language",
	"comment", "image", "exercise_type", "question", "answer", "cloze_text",
	"cloze_answers", "exercise_description", "linked_grammar_rules",
	"stat_correct", "stat_almost_correct", "stat_incorrect", "created_at",
}

const insertItemSQL = `
INSERT INTO items (
    deck_id, kind, word, translation, language, target_language, comment, image,
    exercise_type, question, answer, cloze_text, cloze_answers, exercise_description,
    linked_grammar_rules
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type rowScanner interface {
	Scan(dest ...any) error
}

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository implementation
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func insertArgs(it models.StudyItem) ([]any, error) {
	answers, err := jsonColumn(it.ClozeAnswers)
	if err != nil {
		return nil, err
	}
	rules, err := jsonColumn(it.LinkedGrammarRules)
	if err != nil {
		return nil, err
	}
	return []any{
		it.DeckID, it.Kind, it.Word, it.Translation, it.Language, it.TargetLanguage, it.Comment, it.Image,
		it.ExerciseType, it.Question, it.Answer, it.ClozeText, answers, it.ExerciseDescription,
		rules,
	}, nil
}

func scanItem(s rowScanner) (models.StudyItem, error) {
	var (
		it             models.StudyItem
		answers, rules string
	)
	err := s.Scan(&it.ID, &it.DeckID, &it.Kind, &it.Word, &it.Translation, &it.Language, &it.TargetLanguage,
		&it.Comment, &it.Image, &it.ExerciseType, &it.Question, &it.Answer, &it.ClozeText,
		&answers, &it.ExerciseDescription, &rules,
		&it.Statistics.Correct, &it.Statistics.AlmostCorrect, &it.Statistics.Incorrect, &it.CreatedAt)
	if err != nil {
		return it, err
	}
	if it.ClozeAnswers, err = scanJSONColumn[string](answers); err != nil {
		return it, err
	}
	if it.LinkedGrammarRules, err = scanJSONColumn[int64](rules); err != nil {
		return it, err
	}
	return it, nil
}

func (r *itemRepository) Insert(ctx context.Context, item models.StudyItem) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("inserting item: deck_id=%d, kind=%s", item.DeckID, item.Kind)

	if err := item.Validate(); err != nil {
		log.Warn("rejecting invalid item: %v", err)
		return 0, err
	}
	args, err := insertArgs(item)
	if err != nil {
		log.Error("failed to encode item: %v", err)
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, insertItemSQL, args...)
	if err != nil {
		log.Error("failed to insert item: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get item id: %v", err)
		return 0, err
	}
	log.Debug("item inserted: id=%d", id)
	return id, nil
}

func (r *itemRepository) InsertBatch(ctx context.Context, items []models.StudyItem) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("batch inserting %d items", len(items))

	if len(items) == 0 {
		return nil, nil
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			log.Warn("rejecting batch, item %d invalid: %v", i, err)
			return nil, err
		}
	}

	ids := make([]int64, 0, len(items))
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertItemSQL)
		if err != nil {
			log.Error("failed to prepare batch insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, it := range items {
			args, err := insertArgs(it)
			if err != nil {
				return err
			}
			res, err := stmt.ExecContext(ctx, args...)
			if err != nil {
				log.Error("failed to insert item for deck_id=%d: %v", it.DeckID, err)
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("batch insert completed, %d items inserted", len(ids))
	return ids, nil
}

func (r *itemRepository) Get(ctx context.Context, id int64) (*models.StudyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("fetching item: id=%d", id)

	query, args, err := sqlBuilder.Select(itemColumns...).From("items").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("item not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to fetch item: %v", err)
		return nil, err
	}
	return &it, nil
}

func (r *itemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.StudyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("listing items with filter: deck_id=%d, kind=%s, exercise_type=%s", filter.DeckID, filter.Kind, filter.ExerciseType)

	query := sqlBuilder.Select(itemColumns...).From("items")
	if filter.DeckID != 0 {
		query = query.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.Kind != "" {
		query = query.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.ExerciseType != "" {
		query = query.Where(squirrel.Eq{"exercise_type": filter.ExerciseType})
	}
	query = query.OrderBy("id ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			// sqlite only accepts OFFSET after a LIMIT
			query = query.Limit(uint64(1<<63 - 1))
		}
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.StudyItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			log.Error("failed to scan item row: %v", err)
			return nil, err
		}
		items = append(items, it)
	}
	log.Debug("found %d items", len(items))
	return items, rows.Err()
}

func (r *itemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("item_repo")
	log.Debug("deleting item: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete item: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
