// Package store persists processing sessions, topic domains, and
// generated questions to Postgres. The generation engine never imports
// this package; callers compose it at the boundary.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizforge/quizforge/internal/models"
)

type Config struct {
	ConnString string
	// SessionTablePrefix namespaces the created tables.
	SessionTablePrefix string
}

// Store records quiz processing runs: one session per document, one
// domain row per topic, and the generated questions.
type Store struct {
	config Config
	pool   *pgxpool.Pool
}

func NewWithConfig(config Config) (*Store, error) {
	if config.SessionTablePrefix == "" {
		config.SessionTablePrefix = "resource_session"
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	s := &Store{config: config, pool: pool}
	if err := s.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) sessionsTable() string  { return s.config.SessionTablePrefix + "s" }
func (s *Store) domainsTable() string   { return s.config.SessionTablePrefix + "_domains" }
func (s *Store) questionsTable() string { return s.config.SessionTablePrefix + "_questions" }

func (s *Store) initialize() error {
	ctx := context.Background()

	createSessions := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			file_path TEXT NOT NULL,
			name TEXT,
			status TEXT NOT NULL,
			topic_page_range JSONB,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.sessionsTable())
	if _, err := s.pool.Exec(ctx, createSessions); err != nil {
		return fmt.Errorf("failed to create sessions table: %v", err)
	}

	createDomains := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			resource_session_id UUID NOT NULL REFERENCES %s(id),
			name TEXT NOT NULL,
			page_range_start INTEGER NOT NULL,
			page_range_end INTEGER NOT NULL
		)`, s.domainsTable(), s.sessionsTable())
	if _, err := s.pool.Exec(ctx, createDomains); err != nil {
		return fmt.Errorf("failed to create domains table: %v", err)
	}

	createQuestions := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			resource_session_id UUID NOT NULL REFERENCES %s(id),
			resource_session_domain_id UUID NOT NULL REFERENCES %s(id),
			type TEXT NOT NULL,
			body TEXT NOT NULL,
			options JSONB NOT NULL,
			explanation TEXT,
			is_sample BOOLEAN NOT NULL DEFAULT false
		)`, s.questionsTable(), s.sessionsTable(), s.domainsTable())
	if _, err := s.pool.Exec(ctx, createQuestions); err != nil {
		return fmt.Errorf("failed to create questions table: %v", err)
	}

	return nil
}

// CreateSession inserts a new processing session and returns its ID.
func (s *Store) CreateSession(ctx context.Context, filePath, name string) (string, error) {
	id := uuid.NewString()

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, file_path, name, status)
		VALUES ($1, $2, $3, $4)`, s.sessionsTable())

	if _, err := s.pool.Exec(ctx, stmt, id, filePath, name, "ai_processing"); err != nil {
		return "", fmt.Errorf("failed to create session: %v", err)
	}
	return id, nil
}

// UpdateSessionStatus moves a session through its lifecycle
// (ai_processing, completed, failed).
func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, status string) error {
	stmt := fmt.Sprintf(`
		UPDATE %s SET status = $2, updated_at = now() WHERE id = $1`, s.sessionsTable())

	if _, err := s.pool.Exec(ctx, stmt, sessionID, status); err != nil {
		return fmt.Errorf("failed to update session status: %v", err)
	}
	return nil
}

// SaveTopics records the identified topic map on the session row.
func (s *Store) SaveTopics(ctx context.Context, sessionID string, topics []models.Topic) error {
	payload, err := json.Marshal(models.TopicMap{Topics: topics})
	if err != nil {
		return fmt.Errorf("failed to encode topics: %v", err)
	}

	stmt := fmt.Sprintf(`
		UPDATE %s SET topic_page_range = $2, updated_at = now() WHERE id = $1`, s.sessionsTable())

	if _, err := s.pool.Exec(ctx, stmt, sessionID, payload); err != nil {
		return fmt.Errorf("failed to save topics: %v", err)
	}
	return nil
}

// CreateDomains inserts one domain row per topic and returns the topic
// name to domain ID mapping the question generator consumes.
func (s *Store) CreateDomains(ctx context.Context, sessionID string, topics []models.Topic) (map[string]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, resource_session_id, name, page_range_start, page_range_end)
		VALUES ($1, $2, $3, $4, $5)`, s.domainsTable())

	mapping := make(map[string]string, len(topics))
	for _, topic := range topics {
		id := uuid.NewString()
		if _, err := tx.Exec(ctx, stmt, id, sessionID, topic.Name, topic.Start, topic.End); err != nil {
			return nil, fmt.Errorf("failed to insert domain %q: %v", topic.Name, err)
		}
		mapping[topic.Name] = id
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %v", err)
	}
	return mapping, nil
}

// SaveQuestions inserts the generated questions. The correct option is
// marked with a "[correct]" suffix inside the options array, matching
// what the quiz frontend expects.
func (s *Store) SaveQuestions(ctx context.Context, sessionID string, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, resource_session_id, resource_session_domain_id, type, body, options, explanation, is_sample)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, s.questionsTable())

	for _, q := range questions {
		options := make([]string, len(q.Options))
		for i, option := range q.Options {
			if i == q.CorrectAnswerIndex {
				options[i] = option + " [correct]"
			} else {
				options[i] = option
			}
		}

		payload, err := json.Marshal(options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %v", err)
		}

		_, err = tx.Exec(ctx, stmt,
			uuid.NewString(),
			sessionID,
			q.DomainID,
			"multiple_options",
			q.Question,
			payload,
			q.SourceText,
			false,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

// SaveError records a failure message on the session and marks it
// failed.
func (s *Store) SaveError(ctx context.Context, sessionID, message string) error {
	stmt := fmt.Sprintf(`
		UPDATE %s SET status = 'failed', error = $2, updated_at = now() WHERE id = $1`, s.sessionsTable())

	if _, err := s.pool.Exec(ctx, stmt, sessionID, message); err != nil {
		return fmt.Errorf("failed to save error: %v", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
