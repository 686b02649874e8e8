package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const questionColumns = `id, title, type, category, difficulty, visibility, tags, points,
	estimated_time, negative_marks, explanation, author_notes, content, created_at, updated_at`

// PostgresRepository is a thin pass-through to the questions table. It
// enforces nothing beyond column shapes; not-found is signalled with
// (nil, nil) from the read paths.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, q *Question) (*Question, error) {
	id := uuid.NewString()
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO questions (
			id, title, type, category, difficulty, visibility, tags, points,
			estimated_time, negative_marks, explanation, author_notes, content,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13::jsonb,
			now(), now()
		)
		RETURNING `+questionColumns,
		id, q.Title, string(q.Type), q.Category, string(q.Difficulty), string(q.Visibility),
		pq.Array(q.Tags), q.Points, q.EstimatedTime, q.NegativeMarks,
		nullString(q.Explanation), nullString(q.AuthorNotes), []byte(q.Content),
	)
	out, err := scanQuestion(row)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Question, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE id = $1
	`, id)
	out, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query question: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) FindMany(ctx context.Context, f Filter, skip, take int, sortBy, sortOrder string) ([]Question, error) {
	where, args := buildFilter(f)
	query := `SELECT ` + questionColumns + ` FROM questions` + where +
		` ORDER BY ` + sortColumn(sortBy) + ` ` + sortDirection(sortOrder)
	if take > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, take, skip)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	items := make([]Question, 0)
	for rows.Next() {
		item, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Count(ctx context.Context, f Filter) (int, error) {
	where, args := buildFilter(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM questions`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch UpdatePatch) (*Question, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	set := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if patch.Title != nil {
		set("title = $%d", *patch.Title)
	}
	if patch.Category != nil {
		set("category = $%d", *patch.Category)
	}
	if patch.Difficulty != nil {
		set("difficulty = $%d", string(*patch.Difficulty))
	}
	if patch.Visibility != nil {
		set("visibility = $%d", string(*patch.Visibility))
	}
	if patch.Tags != nil {
		set("tags = $%d", pq.Array(patch.Tags))
	}
	if patch.Points != nil {
		set("points = $%d", *patch.Points)
	}
	if patch.EstimatedTime != nil {
		set("estimated_time = $%d", *patch.EstimatedTime)
	}
	if patch.NegativeMarks != nil {
		set("negative_marks = $%d", *patch.NegativeMarks)
	}
	if patch.Explanation != nil {
		set("explanation = $%d", *patch.Explanation)
	}
	if patch.AuthorNotes != nil {
		set("author_notes = $%d", *patch.AuthorNotes)
	}
	if len(patch.Content) > 0 {
		set("content = $%d::jsonb", []byte(patch.Content))
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE questions
		SET `+strings.Join(sets, ",\n\t\t\t")+`
		WHERE id = $1
		RETURNING `+questionColumns, args...)
	out, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question affected rows: %w", err)
	}
	if affected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func buildFilter(f Filter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.Category != "" {
		add("category ILIKE '%%' || $%d || '%%'", f.Category)
	}
	if f.Difficulty != "" {
		add("difficulty = $%d", string(f.Difficulty))
	}
	if f.Visibility != "" {
		add("visibility = $%d", string(f.Visibility))
	}
	for _, tag := range f.Tags {
		add("EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower($%d))", tag)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "title":
		return "title"
	case "updatedAt":
		return "updated_at"
	case "points":
		return "points"
	case "difficulty":
		return "difficulty"
	default:
		return "created_at"
	}
}

func sortDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}

func scanQuestion(scanner interface{ Scan(dest ...any) error }) (*Question, error) {
	var out Question
	var explanation sql.NullString
	var authorNotes sql.NullString
	var content []byte
	var createdAt, updatedAt time.Time
	if err := scanner.Scan(
		&out.ID,
		&out.Title,
		&out.Type,
		&out.Category,
		&out.Difficulty,
		&out.Visibility,
		pq.Array(&out.Tags),
		&out.Points,
		&out.EstimatedTime,
		&out.NegativeMarks,
		&explanation,
		&authorNotes,
		&content,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if explanation.Valid {
		out.Explanation = &explanation.String
	}
	if authorNotes.Valid {
		out.AuthorNotes = &authorNotes.String
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.Content = json.RawMessage(content)
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return &out, nil
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return s
}
