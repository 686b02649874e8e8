package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrQuestionNotFound = errors.New("question not found")
)

// Repository is the boundary to the persistence engine. FindByID signals a
// missing record with (nil, nil); the service decides the error semantics.
type Repository interface {
	Create(ctx context.Context, q *Question) (*Question, error)
	FindByID(ctx context.Context, id string) (*Question, error)
	FindMany(ctx context.Context, f Filter, skip, take int, sortBy, sortOrder string) ([]Question, error)
	Count(ctx context.Context, f Filter) (int, error)
	Update(ctx context.Context, id string, patch UpdatePatch) (*Question, error)
	Delete(ctx context.Context, id string) error
}

// UpdatePatch is the set of columns to overwrite; nil fields are untouched.
type UpdatePatch struct {
	Title         *string
	Category      *string
	Difficulty    *Difficulty
	Visibility    *Visibility
	Tags          []string
	Points        *int
	EstimatedTime *int
	NegativeMarks *int
	Explanation   *string
	AuthorNotes   *string
	Content       json.RawMessage
}

type Service struct {
	repo     Repository
	validate *Validator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: NewValidator()}
}

// validateContentShape is the service-side defense-in-depth check: the
// content document must carry the keys its declared type requires, even when
// the caller bypassed HTTP validation.
func validateContentShape(t Type, raw json.RawMessage) error {
	if !t.Valid() {
		return fmt.Errorf("%w: Unknown question type", ErrInvalidInput)
	}
	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil {
		return shapeMismatch(t)
	}
	has := func(key string) bool {
		v, ok := obj[key]
		return ok && string(v) != "null"
	}
	switch t {
	case TypeMCQ:
		if !has("questionContent") || !has("options") {
			return shapeMismatch(t)
		}
	case TypeProgramming:
		if !has("questionContent") || !has("programmingLanguage") || !has("testCases") {
			return shapeMismatch(t)
		}
	case TypeDescriptive:
		if !has("questionContent") {
			return shapeMismatch(t)
		}
	case TypeImageBased:
		if !has("questionContent") || !has("options") || !has("displaySettings") {
			return shapeMismatch(t)
		}
	}
	return nil
}

func shapeMismatch(t Type) error {
	label := map[Type]string{
		TypeMCQ:         "MCQ",
		TypeProgramming: "Programming",
		TypeDescriptive: "Descriptive",
		TypeImageBased:  "Image-based",
	}[t]
	return fmt.Errorf("%w: Invalid %s content structure", ErrInvalidInput, label)
}

func (s *Service) CreateQuestion(ctx context.Context, in CreateQuestionInput) (*Question, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	log.Printf("creating question type=%s title=%q", in.Type, in.Title)

	if err := validateContentShape(in.Type, in.Content); err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	created, err := s.repo.Create(ctx, &Question{
		Title:         in.Title,
		Type:          in.Type,
		Category:      in.Category,
		Difficulty:    in.Difficulty,
		Visibility:    in.Visibility,
		Tags:          tags,
		Points:        in.Points,
		EstimatedTime: in.EstimatedTime,
		NegativeMarks: in.NegativeMarks,
		Explanation:   in.Explanation,
		AuthorNotes:   in.AuthorNotes,
		Content:       in.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	log.Printf("question created id=%s", created.ID)
	return created, nil
}

func (s *Service) GetQuestionByID(ctx context.Context, id string) (*Question, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}
	if found == nil {
		return nil, ErrQuestionNotFound
	}
	return found, nil
}

var sortColumns = map[string]bool{
	"title":      true,
	"createdAt":  true,
	"updatedAt":  true,
	"points":     true,
	"difficulty": true,
}

func (s *Service) GetAllQuestions(ctx context.Context, p ListParams) (*QuestionPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if !sortColumns[p.SortBy] {
		p.SortBy = "createdAt"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	skip := (p.Page - 1) * p.Limit

	filter := Filter{
		Type:       p.Type,
		Category:   p.Category,
		Difficulty: p.Difficulty,
		Visibility: p.Visibility,
		Tags:       p.Tags,
	}

	totalItems, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	items, err := s.repo.FindMany(ctx, filter, skip, p.Limit, p.SortBy, p.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}

	return &QuestionPage{
		Items: items,
		Pagination: Pagination{
			CurrentPage: p.Page,
			PageSize:    p.Limit,
			TotalItems:  totalItems,
			TotalPages:  (totalItems + p.Limit - 1) / p.Limit,
		},
	}, nil
}

// UpdateQuestion merges the supplied fields over the stored record. The type
// is immutable: a caller-supplied type is never persisted, and content, when
// supplied, is validated against the type already on record.
func (s *Service) UpdateQuestion(ctx context.Context, id string, in UpdateQuestionInput) (*Question, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find question: %w", err)
	}
	if existing == nil {
		return nil, ErrQuestionNotFound
	}

	if in.Type != nil && *in.Type != existing.Type {
		log.Printf("ignoring type change on question %s: stored=%s requested=%s", id, existing.Type, *in.Type)
	}

	if len(in.Content) > 0 {
		if violations := s.validate.ContentViolations(existing.Type, in.Content); len(violations) > 0 {
			return nil, &ValidationError{Violations: violations}
		}
		if err := validateContentShape(existing.Type, in.Content); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, UpdatePatch{
		Title:         in.Title,
		Category:      in.Category,
		Difficulty:    in.Difficulty,
		Visibility:    in.Visibility,
		Tags:          in.Tags,
		Points:        in.Points,
		EstimatedTime: in.EstimatedTime,
		NegativeMarks: in.NegativeMarks,
		Explanation:   in.Explanation,
		AuthorNotes:   in.AuthorNotes,
		Content:       in.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	if updated == nil {
		return nil, ErrQuestionNotFound
	}
	log.Printf("question updated id=%s", id)
	return updated, nil
}

func (s *Service) DeleteQuestion(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find question: %w", err)
	}
	if existing == nil {
		return ErrQuestionNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	log.Printf("question deleted id=%s", id)
	return nil
}

func (s *Service) GetQuestionsByCategory(ctx context.Context, category string) ([]Question, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	items, err := s.repo.FindMany(ctx, Filter{Category: category}, 0, 0, "createdAt", "desc")
	if err != nil {
		return nil, fmt.Errorf("query questions by category: %w", err)
	}
	return items, nil
}

func (s *Service) GetQuestionsByType(ctx context.Context, t Type) ([]Question, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: Invalid question type", ErrInvalidInput)
	}
	items, err := s.repo.FindMany(ctx, Filter{Type: t}, 0, 0, "createdAt", "desc")
	if err != nil {
		return nil, fmt.Errorf("query questions by type: %w", err)
	}
	return items, nil
}
