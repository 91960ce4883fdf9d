package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"survey-scoring/internal/domain"
)

// CheckpointStore keeps the answer structure and normalized responses in a
// SQLite database file.
type CheckpointStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures its tables exist.
func Open(ctx context.Context, path string) (*CheckpointStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &CheckpointStore{db: db}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *CheckpointStore) Close() error {
	return s.db.Close()
}

func (s *CheckpointStore) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS answer_structure (
			position INTEGER PRIMARY KEY,
			question_number TEXT NOT NULL UNIQUE,
			header TEXT NOT NULL,
			question TEXT NOT NULL,
			points INTEGER NOT NULL,
			character_tag TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS answer_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			team TEXT NOT NULL,
			pay_type TEXT NOT NULL,
			question_number TEXT NOT NULL,
			part INTEGER NOT NULL DEFAULT 0,
			answer TEXT NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// SaveCheckpoint replaces the stored checkpoint in a single transaction.
func (s *CheckpointStore) SaveCheckpoint(ctx context.Context, questions []domain.Question, records []domain.AnswerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkpoint: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM answer_structure`, `DELETE FROM answer_records`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clear checkpoint: %w", err)
		}
	}

	qstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO answer_structure (position, question_number, header, question, points, character_tag) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare structure insert: %w", err)
	}
	defer qstmt.Close()
	for i, q := range questions {
		if _, err := qstmt.ExecContext(ctx, i, q.Number, q.Header, q.Text, q.Points, q.CharacterTag); err != nil {
			return fmt.Errorf("insert question %s: %w", q.Number, err)
		}
	}

	rstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO answer_records (team, pay_type, question_number, part, answer) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer rstmt.Close()
	for _, r := range records {
		if _, err := rstmt.ExecContext(ctx, r.Team, r.PayType, r.QuestionNumber, r.Part, r.Answer); err != nil {
			return fmt.Errorf("insert record %s/%s: %w", r.Team, r.QuestionNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

func (s *CheckpointStore) LoadCheckpoint(ctx context.Context) ([]domain.Question, []domain.AnswerRecord, error) {
	questions, err := s.loadQuestions(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, domain.ErrCheckpointNotFound
	}
	records, err := s.loadRecords(ctx)
	if err != nil {
		return nil, nil, err
	}
	return questions, records, nil
}

func (s *CheckpointStore) loadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_number, header, question, points, character_tag FROM answer_structure ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query answer structure: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.Number, &q.Header, &q.Text, &q.Points, &q.CharacterTag); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *CheckpointStore) loadRecords(ctx context.Context) ([]domain.AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team, pay_type, question_number, part, answer FROM answer_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query answer records: %w", err)
	}
	defer rows.Close()

	var records []domain.AnswerRecord
	for rows.Next() {
		var r domain.AnswerRecord
		if err := rows.Scan(&r.Team, &r.PayType, &r.QuestionNumber, &r.Part, &r.Answer); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
