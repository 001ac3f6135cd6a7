package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/model"
)

const knowledgeColumns = `id, question, answer, topic, confidence, source, created_at`

type knowledgeRepository struct {
	db *sql.DB
}

func newKnowledgeRepository(db *sql.DB) *knowledgeRepository {
	return &knowledgeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKnowledge(row rowScanner) (*model.Knowledge, error) {
	var (
		k         model.Knowledge
		topic     sql.NullString
		source    string
		createdAt int64
	)
	if err := row.Scan(&k.ID, &k.Question, &k.Answer, &topic, &k.Confidence, &source, &createdAt); err != nil {
		return nil, err
	}
	k.Topic = topic.String
	k.Source = model.KnowledgeSource(source)
	k.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &k, nil
}

func nullableTopic(topic string) sql.NullString {
	return sql.NullString{String: topic, Valid: topic != ""}
}

func prepareInsert(knowledge *model.Knowledge) *model.Knowledge {
	k := knowledge.Copy()
	if k.ID == "" {
		k.ID = model.NewKnowledgeID()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	k.CreatedAt = k.CreatedAt.UTC().Truncate(time.Second)
	return k
}

func (r *knowledgeRepository) Create(ctx context.Context, knowledge *model.Knowledge) (*model.Knowledge, error) {
	k := prepareInsert(knowledge)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge (`+knowledgeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.Question, k.Answer, nullableTopic(k.Topic), k.Confidence, string(k.Source), k.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge", goerr.V("id", k.ID))
	}

	return k, nil
}

func (r *knowledgeRepository) Get(ctx context.Context, id model.KnowledgeID) (*model.Knowledge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+knowledgeColumns+` FROM knowledge WHERE id = ?`, id)

	k, err := scanKnowledge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "knowledge not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get knowledge", goerr.V("id", id))
	}

	return k, nil
}

// each calls fn for every record in rowid order until fn returns false
func (r *knowledgeRepository) each(ctx context.Context, query string, args []any, fn func(k *model.Knowledge) bool) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return goerr.Wrap(err, "failed to query knowledge")
	}
	defer rows.Close()

	for rows.Next() {
		k, err := scanKnowledge(rows)
		if err != nil {
			return goerr.Wrap(err, "failed to scan knowledge")
		}
		if !fn(k) {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return goerr.Wrap(err, "failed to iterate knowledge")
	}
	return nil
}

func (r *knowledgeRepository) FindMatch(ctx context.Context, query string) (*model.Knowledge, error) {
	q := strings.ToLower(query)

	var found *model.Knowledge
	err := r.each(ctx, `SELECT `+knowledgeColumns+` FROM knowledge ORDER BY rowid`, nil, func(k *model.Knowledge) bool {
		if strings.Contains(strings.ToLower(k.Question), q) {
			found = k
			return false
		}
		return true
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search knowledge")
	}

	return found, nil
}

func (r *knowledgeRepository) List(ctx context.Context) ([]*model.Knowledge, error) {
	result := make([]*model.Knowledge, 0)
	err := r.each(ctx, `SELECT `+knowledgeColumns+` FROM knowledge ORDER BY rowid`, nil, func(k *model.Knowledge) bool {
		result = append(result, k)
		return true
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge")
	}

	return result, nil
}

func (r *knowledgeRepository) ListByTopic(ctx context.Context, topic string) ([]*model.Knowledge, error) {
	query := `SELECT ` + knowledgeColumns + ` FROM knowledge WHERE topic = ? ORDER BY rowid`
	args := []any{topic}
	if topic == "" {
		query = `SELECT ` + knowledgeColumns + ` FROM knowledge WHERE topic IS NULL OR topic = '' ORDER BY rowid`
		args = nil
	}

	result := make([]*model.Knowledge, 0)
	err := r.each(ctx, query, args, func(k *model.Knowledge) bool {
		result = append(result, k)
		return true
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list knowledge by topic", goerr.V("topic", topic))
	}

	return result, nil
}

// Upsert relies on two single-statement writes. Records are never deleted, so once the
// insert conflicts the row exists, and the conditional UPDATE is an atomic compare-and-set
// on confidence.
func (r *knowledgeRepository) Upsert(ctx context.Context, knowledge *model.Knowledge) (model.UpsertResult, error) {
	if knowledge.ID == "" {
		return "", goerr.New("knowledge ID is required for upsert")
	}
	k := prepareInsert(knowledge)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO knowledge (`+knowledgeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		k.ID, k.Question, k.Answer, nullableTopic(k.Topic), k.Confidence, string(k.Source), k.CreatedAt.Unix(),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to insert knowledge", goerr.V("id", k.ID))
	}
	if n, err := res.RowsAffected(); err != nil {
		return "", goerr.Wrap(err, "failed to read affected rows", goerr.V("id", k.ID))
	} else if n == 1 {
		return model.UpsertInserted, nil
	}

	res, err = r.db.ExecContext(ctx,
		`UPDATE knowledge
		SET question = ?, answer = ?, topic = ?, confidence = ?, source = ?
		WHERE id = ? AND confidence < ?`,
		k.Question, k.Answer, nullableTopic(k.Topic), k.Confidence, string(k.Source), k.ID, k.Confidence,
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to update knowledge", goerr.V("id", k.ID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", goerr.Wrap(err, "failed to read affected rows", goerr.V("id", k.ID))
	}
	if n == 1 {
		return model.UpsertUpdated, nil
	}

	return model.UpsertUnchanged, nil
}
