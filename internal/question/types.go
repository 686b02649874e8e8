package question

import (
	"encoding/json"
	"strings"
	"time"
)

// Type discriminates the content variant carried by a question. It is fixed
// at creation and never changes on update.
type Type string

const (
	TypeMCQ         Type = "MCQ"
	TypeProgramming Type = "PROGRAMMING"
	TypeDescriptive Type = "DESCRIPTIVE"
	TypeImageBased  Type = "IMAGE_BASED"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

var validTypes = map[Type]bool{
	TypeMCQ:         true,
	TypeProgramming: true,
	TypeDescriptive: true,
	TypeImageBased:  true,
}

func (t Type) Valid() bool { return validTypes[t] }

// Question is the persisted record. Content holds the raw JSON of the
// type-specific variant and is echoed back exactly as stored.
type Question struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Type          Type            `json:"type"`
	Category      string          `json:"category"`
	Difficulty    Difficulty      `json:"difficulty"`
	Visibility    Visibility      `json:"visibility"`
	Tags          []string        `json:"tags"`
	Points        int             `json:"points"`
	EstimatedTime int             `json:"estimatedTime"`
	NegativeMarks int             `json:"negativeMarks"`
	Explanation   *string         `json:"explanation,omitempty"`
	AuthorNotes   *string         `json:"authorNotes,omitempty"`
	Content       json.RawMessage `json:"content"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CreateQuestionRequest is the wire shape of POST /questions. Numeric fields
// are pointers so a missing field is distinguishable from a zero value.
type CreateQuestionRequest struct {
	Title         string          `json:"title" validate:"required,min=3,max=500"`
	Type          Type            `json:"type" validate:"required,oneof=MCQ PROGRAMMING DESCRIPTIVE IMAGE_BASED"`
	Category      string          `json:"category" validate:"required,min=2,max=100"`
	Difficulty    Difficulty      `json:"difficulty" validate:"required,oneof=EASY MEDIUM HARD"`
	Visibility    Visibility      `json:"visibility" validate:"required,oneof=PUBLIC PRIVATE"`
	Tags          []string        `json:"tags" validate:"omitempty,dive,min=2,max=50"`
	Points        *int            `json:"points" validate:"required,min=0,max=1000"`
	EstimatedTime *int            `json:"estimatedTime" validate:"required,min=1,max=1440"`
	NegativeMarks *int            `json:"negativeMarks" validate:"omitempty,min=0,max=100"`
	Explanation   *string         `json:"explanation" validate:"omitempty,max=5000"`
	AuthorNotes   *string         `json:"authorNotes" validate:"omitempty,max=2000"`
	Content       json.RawMessage `json:"content"`
}

func (r *CreateQuestionRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	for i := range r.Tags {
		r.Tags[i] = strings.TrimSpace(r.Tags[i])
	}
	trimPtr(r.Explanation)
	trimPtr(r.AuthorNotes)
}

// UpdateQuestionRequest is the wire shape of PUT /questions/{id}. Every field
// is optional; absent fields leave the stored value untouched. Type is decoded
// so a caller-supplied value can be checked, but it is never persisted.
type UpdateQuestionRequest struct {
	Title         *string         `json:"title" validate:"omitempty,min=3,max=500"`
	Type          *Type           `json:"type" validate:"omitempty,oneof=MCQ PROGRAMMING DESCRIPTIVE IMAGE_BASED"`
	Category      *string         `json:"category" validate:"omitempty,min=2,max=100"`
	Difficulty    *Difficulty     `json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	Visibility    *Visibility     `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	Tags          []string        `json:"tags" validate:"omitempty,dive,min=2,max=50"`
	Points        *int            `json:"points" validate:"omitempty,min=0,max=1000"`
	EstimatedTime *int            `json:"estimatedTime" validate:"omitempty,min=1,max=1440"`
	NegativeMarks *int            `json:"negativeMarks" validate:"omitempty,min=0,max=100"`
	Explanation   *string         `json:"explanation" validate:"omitempty,max=5000"`
	AuthorNotes   *string         `json:"authorNotes" validate:"omitempty,max=2000"`
	Content       json.RawMessage `json:"content"`
}

func (r *UpdateQuestionRequest) normalize() {
	trimPtr(r.Title)
	trimPtr(r.Category)
	for i := range r.Tags {
		r.Tags[i] = strings.TrimSpace(r.Tags[i])
	}
	trimPtr(r.Explanation)
	trimPtr(r.AuthorNotes)
}

func trimPtr(v *string) {
	if v != nil {
		*v = strings.TrimSpace(*v)
	}
}

type CreateQuestionInput struct {
	Title         string
	Type          Type
	Category      string
	Difficulty    Difficulty
	Visibility    Visibility
	Tags          []string
	Points        int
	EstimatedTime int
	NegativeMarks int
	Explanation   *string
	AuthorNotes   *string
	Content       json.RawMessage
}

// UpdateQuestionInput carries the merged partial update. Nil fields are left
// unchanged; a non-nil empty Tags slice clears the tags.
type UpdateQuestionInput struct {
	Title         *string
	Type          *Type
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

// ListParams are the typed query parameters of GET /questions after defaults
// have been applied.
type ListParams struct {
	Page       int
	Limit      int
	Type       Type
	Category   string
	Difficulty Difficulty
	Visibility Visibility
	Tags       []string
	SortBy     string
	SortOrder  string
}

// Filter is the conjunction of predicates pushed down to the repository.
// Zero-valued fields are not applied; Tags require every listed tag to be
// present, case-insensitively.
type Filter struct {
	Type       Type
	Category   string
	Difficulty Difficulty
	Visibility Visibility
	Tags       []string
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

type QuestionPage struct {
	Items      []Question
	Pagination Pagination
}
