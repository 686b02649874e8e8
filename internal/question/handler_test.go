package question

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type mockQuestionService struct {
	createQuestionFn         func(ctx context.Context, in CreateQuestionInput) (*Question, error)
	getQuestionByIDFn        func(ctx context.Context, id string) (*Question, error)
	getAllQuestionsFn        func(ctx context.Context, p ListParams) (*QuestionPage, error)
	updateQuestionFn         func(ctx context.Context, id string, in UpdateQuestionInput) (*Question, error)
	deleteQuestionFn         func(ctx context.Context, id string) error
	getQuestionsByCategoryFn func(ctx context.Context, category string) ([]Question, error)
	getQuestionsByTypeFn     func(ctx context.Context, t Type) ([]Question, error)
	exportQuestionsFn        func(ctx context.Context) ([]byte, error)
}

func (m *mockQuestionService) CreateQuestion(ctx context.Context, in CreateQuestionInput) (*Question, error) {
	if m.createQuestionFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.createQuestionFn(ctx, in)
}

func (m *mockQuestionService) GetQuestionByID(ctx context.Context, id string) (*Question, error) {
	if m.getQuestionByIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getQuestionByIDFn(ctx, id)
}

func (m *mockQuestionService) GetAllQuestions(ctx context.Context, p ListParams) (*QuestionPage, error) {
	if m.getAllQuestionsFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getAllQuestionsFn(ctx, p)
}

func (m *mockQuestionService) UpdateQuestion(ctx context.Context, id string, in UpdateQuestionInput) (*Question, error) {
	if m.updateQuestionFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.updateQuestionFn(ctx, id, in)
}

func (m *mockQuestionService) DeleteQuestion(ctx context.Context, id string) error {
	if m.deleteQuestionFn == nil {
		return errors.New("not implemented")
	}
	return m.deleteQuestionFn(ctx, id)
}

func (m *mockQuestionService) GetQuestionsByCategory(ctx context.Context, category string) ([]Question, error) {
	if m.getQuestionsByCategoryFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getQuestionsByCategoryFn(ctx, category)
}

func (m *mockQuestionService) GetQuestionsByType(ctx context.Context, t Type) ([]Question, error) {
	if m.getQuestionsByTypeFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getQuestionsByTypeFn(ctx, t)
}

func (m *mockQuestionService) ExportQuestions(ctx context.Context) ([]byte, error) {
	if m.exportQuestionsFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.exportQuestionsFn(ctx)
}

func newTestRouter(svc questionService) http.Handler {
	h := &Handler{svc: svc, validate: NewValidator(), devMode: true}
	r := chi.NewRouter()
	r.Route("/api/v1/questions", func(api chi.Router) {
		api.Post("/", h.Create)
		api.Get("/", h.List)
		api.Get("/export", h.Export)
		api.Get("/category/{category}", h.ByCategory)
		api.Get("/type/{type}", h.ByType)
		api.Get("/{id}", h.Get)
		api.Put("/{id}", h.Update)
		api.Delete("/{id}", h.Delete)
	})
	return r
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []FieldError    `json:"errors"`
	Pagination *Pagination     `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return env
}

const validQuestionID = "4b1d2c3e-0f1a-4f5b-9c8d-7e6f5a4b3c2d"

const createMCQBody = `{
	"title": "What is the capital of France?",
	"type": "MCQ",
	"category": "Geography",
	"difficulty": "EASY",
	"visibility": "PUBLIC",
	"tags": ["europe", "capitals"],
	"points": 10,
	"estimatedTime": 5,
	"content": {
		"questionContent": "What is the capital of France?",
		"options": [
			{"id": "a", "text": "Paris", "isCorrect": true},
			{"id": "b", "text": "London", "isCorrect": false}
		]
	}
}`

func TestCreateQuestionHTTP_Success(t *testing.T) {
	mock := &mockQuestionService{
		createQuestionFn: func(ctx context.Context, in CreateQuestionInput) (*Question, error) {
			if in.Type != TypeMCQ || in.Points != 10 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &Question{
				ID:            validQuestionID,
				Title:         in.Title,
				Type:          in.Type,
				Category:      in.Category,
				Difficulty:    in.Difficulty,
				Visibility:    in.Visibility,
				Tags:          in.Tags,
				Points:        in.Points,
				EstimatedTime: in.EstimatedTime,
				Content:       in.Content,
				CreatedAt:     time.Now(),
				UpdatedAt:     time.Now(),
			}, nil
		},
	}
	router := newTestRouter(mock)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/", bytes.NewBufferString(createMCQBody))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "Question created successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	var got Question
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.ID != validQuestionID || len(got.Tags) != 2 {
		t.Fatalf("unexpected question: %+v", got)
	}
}

func TestCreateQuestionHTTP_NoCorrectOption(t *testing.T) {
	called := false
	mock := &mockQuestionService{
		createQuestionFn: func(ctx context.Context, in CreateQuestionInput) (*Question, error) {
			called = true
			return nil, errors.New("should not be reached")
		},
	}
	router := newTestRouter(mock)

	body := strings.ReplaceAll(createMCQBody, `"isCorrect": true`, `"isCorrect": false`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/", bytes.NewBufferString(body))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if called {
		t.Fatal("service must not be called on validation failure")
	}
	env := decodeEnvelope(t, rec)
	if env.Message != "Validation failed" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if findViolation(env.Errors, "content.options") == nil {
		t.Fatalf("expected violation on content.options, got %+v", env.Errors)
	}
}

func TestCreateQuestionHTTP_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockQuestionService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/", bytes.NewBufferString(`{"title":`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != "Invalid request body" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestGetQuestionHTTP_BadID(t *testing.T) {
	router := newTestRouter(&mockQuestionService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/not-a-uuid", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if findViolation(env.Errors, "id") == nil {
		t.Fatalf("expected violation on id, got %+v", env.Errors)
	}
}

func TestGetQuestionHTTP_NotFound(t *testing.T) {
	mock := &mockQuestionService{
		getQuestionByIDFn: func(ctx context.Context, id string) (*Question, error) {
			return nil, ErrQuestionNotFound
		},
	}
	router := newTestRouter(mock)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/"+validQuestionID, nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Message != "Question not found" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestListQuestionsHTTP_Defaults(t *testing.T) {
	mock := &mockQuestionService{
		getAllQuestionsFn: func(ctx context.Context, p ListParams) (*QuestionPage, error) {
			if p.Page != 1 || p.Limit != 10 || p.SortBy != "createdAt" || p.SortOrder != "desc" {
				t.Fatalf("unexpected params: %+v", p)
			}
			return &QuestionPage{
				Items:      []Question{},
				Pagination: Pagination{CurrentPage: 1, PageSize: 10, TotalItems: 0, TotalPages: 0},
			}, nil
		},
	}
	router := newTestRouter(mock)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Pagination == nil || env.Pagination.PageSize != 10 {
		t.Fatalf("expected pagination, got %+v", env.Pagination)
	}
}

func TestListQuestionsHTTP_FiltersAndTags(t *testing.T) {
	mock := &mockQuestionService{
		getAllQuestionsFn: func(ctx context.Context, p ListParams) (*QuestionPage, error) {
			if p.Type != TypeMCQ || p.Difficulty != DifficultyHard || len(p.Tags) != 2 {
				t.Fatalf("unexpected params: %+v", p)
			}
			return &QuestionPage{Items: []Question{}, Pagination: Pagination{CurrentPage: 1, PageSize: 10}}, nil
		},
	}
	router := newTestRouter(mock)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/?type=MCQ&difficulty=HARD&tags=go,sql", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestListQuestionsHTTP_BadQuery(t *testing.T) {
	router := newTestRouter(&mockQuestionService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/?page=abc&limit=500&sortBy=name", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	for _, field := range []string{"page", "limit", "sortBy"} {
		if findViolation(env.Errors, field) == nil {
			t.Errorf("expected violation on %q, got %+v", field, env.Errors)
		}
	}
}

func TestUpdateQuestionHTTP_ValidationErrorFromService(t *testing.T) {
	mock := &mockQuestionService{
		updateQuestionFn: func(ctx context.Context, id string, in UpdateQuestionInput) (*Question, error) {
			return nil, &ValidationError{Violations: []FieldError{
				{Field: "content.options", Message: "Options are required"},
			}}
		},
	}
	router := newTestRouter(mock)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/questions/"+validQuestionID,
		bytes.NewBufferString(`{"content":{"questionContent":"Well formed but wrong variant"}}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if findViolation(env.Errors, "content.options") == nil {
		t.Fatalf("expected violation on content.options, got %+v", env.Errors)
	}
}

func TestDeleteQuestionHTTP_Success(t *testing.T) {
	mock := &mockQuestionService{
		deleteQuestionFn: func(ctx context.Context, id string) error {
			if id != validQuestionID {
				t.Fatalf("unexpected id %q", id)
			}
			return nil
		},
	}
	router := newTestRouter(mock)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/questions/"+validQuestionID, nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Message != "Question deleted successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestQuestionsByTypeHTTP_Invalid(t *testing.T) {
	router := newTestRouter(&mockQuestionService{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/type/ESSAY", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if findViolation(env.Errors, "type") == nil {
		t.Fatalf("expected violation on type, got %+v", env.Errors)
	}
}

func TestExportQuestionsHTTP(t *testing.T) {
	mock := &mockQuestionService{
		exportQuestionsFn: func(ctx context.Context) ([]byte, error) {
			return []byte("xlsx-bytes"), nil
		},
	}
	router := newTestRouter(mock)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/export", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.String() != "xlsx-bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestInternalErrorHTTP_DevModeStack(t *testing.T) {
	mock := &mockQuestionService{
		getQuestionByIDFn: func(ctx context.Context, id string) (*Question, error) {
			return nil, errors.New("connection refused")
		},
	}
	router := newTestRouter(mock)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/"+validQuestionID, nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("expected diagnostic in dev mode, body %s", rec.Body.String())
	}
}
