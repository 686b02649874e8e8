package question

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"questionbank/internal/app/apiresp"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	svc      questionService
	validate *Validator
	devMode  bool
}

type questionService interface {
	CreateQuestion(ctx context.Context, in CreateQuestionInput) (*Question, error)
	GetQuestionByID(ctx context.Context, id string) (*Question, error)
	GetAllQuestions(ctx context.Context, p ListParams) (*QuestionPage, error)
	UpdateQuestion(ctx context.Context, id string, in UpdateQuestionInput) (*Question, error)
	DeleteQuestion(ctx context.Context, id string) error
	GetQuestionsByCategory(ctx context.Context, category string) ([]Question, error)
	GetQuestionsByType(ctx context.Context, t Type) ([]Question, error)
	ExportQuestions(ctx context.Context) ([]byte, error)
}

// NewHandler wires the HTTP surface. devMode controls whether 500 responses
// carry diagnostic detail.
func NewHandler(svc *Service, devMode bool) *Handler {
	return &Handler{svc: svc, validate: NewValidator(), devMode: devMode}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.normalize()

	if violations := h.validate.ValidateCreate(&req); len(violations) > 0 {
		apiresp.WriteErrors(w, r, http.StatusBadRequest, "Validation failed", violations)
		return
	}

	negativeMarks := 0
	if req.NegativeMarks != nil {
		negativeMarks = *req.NegativeMarks
	}
	created, err := h.svc.CreateQuestion(r.Context(), CreateQuestionInput{
		Title:         req.Title,
		Type:          req.Type,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		Visibility:    req.Visibility,
		Tags:          req.Tags,
		Points:        *req.Points,
		EstimatedTime: *req.EstimatedTime,
		NegativeMarks: negativeMarks,
		Explanation:   req.Explanation,
		AuthorNotes:   req.AuthorNotes,
		Content:       req.Content,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteData(w, r, http.StatusCreated, "Question created successfully", created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.questionID(w, r)
	if !ok {
		return
	}
	found, err := h.svc.GetQuestionByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteData(w, r, http.StatusOK, "Question fetched successfully", found)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, violations := h.parseListParams(r)
	if len(violations) > 0 {
		apiresp.WriteErrors(w, r, http.StatusBadRequest, "Validation failed", violations)
		return
	}

	page, err := h.svc.GetAllQuestions(r.Context(), params)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WritePage(w, r, "Questions fetched successfully", page.Items, apiresp.Pagination(page.Pagination))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.questionID(w, r)
	if !ok {
		return
	}

	var req UpdateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.normalize()

	if violations := h.validate.ValidateUpdate(&req); len(violations) > 0 {
		apiresp.WriteErrors(w, r, http.StatusBadRequest, "Validation failed", violations)
		return
	}

	updated, err := h.svc.UpdateQuestion(r.Context(), id, UpdateQuestionInput{
		Title:         req.Title,
		Type:          req.Type,
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		Visibility:    req.Visibility,
		Tags:          req.Tags,
		Points:        req.Points,
		EstimatedTime: req.EstimatedTime,
		NegativeMarks: req.NegativeMarks,
		Explanation:   req.Explanation,
		AuthorNotes:   req.AuthorNotes,
		Content:       req.Content,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteData(w, r, http.StatusOK, "Question updated successfully", updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.questionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteQuestion(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteData(w, r, http.StatusOK, "Question deleted successfully", nil)
}

func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	items, err := h.svc.GetQuestionsByCategory(r.Context(), category)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteData(w, r, http.StatusOK, "Questions fetched successfully", items)
}

func (h *Handler) ByType(w http.ResponseWriter, r *http.Request) {
	t := Type(strings.TrimSpace(chi.URLParam(r, "type")))
	if !t.Valid() {
		apiresp.WriteErrors(w, r, http.StatusBadRequest, "Validation failed", []FieldError{
			{Field: "type", Message: "Invalid question type"},
		})
		return
	}
	items, err := h.svc.GetQuestionsByType(r.Context(), t)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	apiresp.WriteData(w, r, http.StatusOK, "Questions fetched successfully", items)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportQuestions(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="questions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) questionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if _, err := uuid.Parse(id); err != nil {
		apiresp.WriteErrors(w, r, http.StatusBadRequest, "Validation failed", []FieldError{
			{Field: "id", Message: "Invalid question ID format"},
		})
		return "", false
	}
	return id, true
}

// parseListParams maps the raw query string to typed parameters, collecting
// every violation instead of failing on the first.
func (h *Handler) parseListParams(r *http.Request) (ListParams, []FieldError) {
	q := r.URL.Query()
	var violations []FieldError
	var lq listQueryRequest

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, FieldError{Field: "page", Message: "Page must be a positive integer"})
		} else {
			lq.Page = &n
		}
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, FieldError{Field: "limit", Message: "Limit must be between 1 and 100"})
		} else {
			lq.Limit = &n
		}
	}
	if raw := strings.TrimSpace(q.Get("type")); raw != "" {
		t := Type(raw)
		lq.Type = &t
	}
	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		lq.Category = &raw
	}
	if raw := strings.TrimSpace(q.Get("difficulty")); raw != "" {
		d := Difficulty(raw)
		lq.Difficulty = &d
	}
	if raw := strings.TrimSpace(q.Get("visibility")); raw != "" {
		v := Visibility(raw)
		lq.Visibility = &v
	}
	if raw := strings.TrimSpace(q.Get("sortBy")); raw != "" {
		lq.SortBy = &raw
	}
	if raw := strings.TrimSpace(q.Get("sortOrder")); raw != "" {
		lq.SortOrder = &raw
	}

	violations = append(violations, h.validate.validateListQuery(&lq)...)
	if len(violations) > 0 {
		return ListParams{}, violations
	}

	params := ListParams{Page: 1, Limit: 10, SortBy: "createdAt", SortOrder: "desc"}
	if lq.Page != nil {
		params.Page = *lq.Page
	}
	if lq.Limit != nil {
		params.Limit = *lq.Limit
	}
	if lq.Type != nil {
		params.Type = *lq.Type
	}
	if lq.Category != nil {
		params.Category = *lq.Category
	}
	if lq.Difficulty != nil {
		params.Difficulty = *lq.Difficulty
	}
	if lq.Visibility != nil {
		params.Visibility = *lq.Visibility
	}
	if lq.SortBy != nil {
		params.SortBy = *lq.SortBy
	}
	if lq.SortOrder != nil {
		params.SortOrder = *lq.SortOrder
	}
	for _, tag := range strings.Split(q.Get("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			params.Tags = append(params.Tags, tag)
		}
	}
	return params, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		apiresp.WriteErrors(w, r, http.StatusBadRequest, "Validation failed", verr.Violations)
	case errors.Is(err, ErrInvalidInput):
		apiresp.WriteError(w, r, http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "))
	case errors.Is(err, ErrQuestionNotFound):
		apiresp.WriteError(w, r, http.StatusNotFound, "Question not found")
	default:
		diag := ""
		if h.devMode {
			diag = err.Error()
		}
		apiresp.WriteInternal(w, r, diag)
	}
}
