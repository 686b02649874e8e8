package question

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError names one offending field together with a human-readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violation found in a request. It unwraps
// to ErrInvalidInput so handlers can route it with errors.Is.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", e.Violations[0].Field, e.Violations[0].Message)
	}
	return fmt.Sprintf("validation failed: %d violations", len(e.Violations))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Validator evaluates field-level and cross-field rules. It is a pure
// function over its input and collects every violation instead of stopping
// at the first.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// ValidateCreate runs the base-field rules and, when the declared type is
// recognized, the matching content rules. An absent or unknown type skips the
// content rules; the service rejects the type itself later.
func (val *Validator) ValidateCreate(req *CreateQuestionRequest) []FieldError {
	out := val.structViolations(req)
	if rule, ok := val.contentRules()[req.Type]; ok {
		out = append(out, rule(req.Content)...)
	}
	return out
}

// ValidateUpdate runs base-field rules only. Content supplied on update is
// validated by the service against the stored type, which an HTTP-layer
// validator cannot know.
func (val *Validator) ValidateUpdate(req *UpdateQuestionRequest) []FieldError {
	return val.structViolations(req)
}

// ContentViolations validates a raw content document against the rules of the
// given type. Unknown types yield no violations here.
func (val *Validator) ContentViolations(t Type, raw json.RawMessage) []FieldError {
	rule, ok := val.contentRules()[t]
	if !ok {
		return nil
	}
	return rule(raw)
}

type listQueryRequest struct {
	Page       *int        `json:"page" validate:"omitempty,min=1"`
	Limit      *int        `json:"limit" validate:"omitempty,min=1,max=100"`
	Type       *Type       `json:"type" validate:"omitempty,oneof=MCQ PROGRAMMING DESCRIPTIVE IMAGE_BASED"`
	Category   *string     `json:"category" validate:"omitempty,min=2,max=100"`
	Difficulty *Difficulty `json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	Visibility *Visibility `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	SortBy     *string     `json:"sortBy" validate:"omitempty,oneof=title createdAt updatedAt points difficulty"`
	SortOrder  *string     `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

func (val *Validator) validateListQuery(q *listQueryRequest) []FieldError {
	return val.structViolations(q)
}

func (val *Validator) structViolations(s any) []FieldError {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: messageFor(fe)})
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// baseMessages keeps the API's message texts per field: one for a missing
// required field, one for any bounds or enum violation.
var baseMessages = map[string]struct{ required, invalid string }{
	"title":         {"Title is required", "Title must be between 3 and 500 characters"},
	"type":          {"Question type is required", "Invalid question type"},
	"category":      {"Category is required", "Category must be between 2 and 100 characters"},
	"difficulty":    {"Difficulty is required", "Invalid difficulty level"},
	"visibility":    {"Visibility is required", "Invalid visibility type"},
	"tags":          {"", "Each tag must be between 2 and 50 characters"},
	"points":        {"Points are required", "Points must be between 0 and 1000"},
	"estimatedTime": {"Estimated time is required", "Estimated time must be between 1 and 1440 minutes"},
	"negativeMarks": {"", "Negative marks must be between 0 and 100"},
	"explanation":   {"", "Explanation must not exceed 5000 characters"},
	"authorNotes":   {"", "Author notes must not exceed 2000 characters"},
	"page":          {"", "Page must be a positive integer"},
	"limit":         {"", "Limit must be between 1 and 100"},
	"sortBy":        {"", "Invalid sort field"},
	"sortOrder":     {"", "Sort order must be asc or desc"},
}

func messageFor(fe validator.FieldError) string {
	key := fieldPath(fe)
	if i := strings.IndexByte(key, '['); i >= 0 {
		key = key[:i]
	}
	m, ok := baseMessages[key]
	if !ok {
		return fmt.Sprintf("%s is invalid", key)
	}
	if fe.Tag() == "required" && m.required != "" {
		return m.required
	}
	return m.invalid
}

// decodeContent unmarshals the raw content into a variant struct. A type
// mismatch (e.g. a string where a boolean belongs) is reported as a single
// violation on the offending field.
func decodeContent(raw json.RawMessage, dst any) ([]FieldError, bool) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return []FieldError{{Field: "content." + typeErr.Field, Message: typeMismatchMessage(typeErr)}}, false
		}
		return []FieldError{{Field: "content", Message: "Content must be a JSON object"}}, false
	}
	return nil, true
}

func typeMismatchMessage(typeErr *json.UnmarshalTypeError) string {
	field := typeErr.Field
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch typeErr.Type.Kind() {
	case reflect.Bool:
		return field + " must be a boolean"
	case reflect.Int, reflect.Int64:
		return field + " must be an integer"
	case reflect.String:
		return field + " must be a string"
	default:
		return field + " has the wrong type"
	}
}

func checkQuestionContent(v *string) []FieldError {
	if v == nil || strings.TrimSpace(*v) == "" {
		return []FieldError{{Field: "content.questionContent", Message: "Question content is required"}}
	}
	if n := runeLen(*v); n < 10 || n > 10000 {
		return []FieldError{{Field: "content.questionContent", Message: "Question content must be between 10 and 10000 characters"}}
	}
	return nil
}

func runeLen(s string) int { return len([]rune(strings.TrimSpace(s))) }

func (val *Validator) isHTTPURL(s string) bool {
	return val.v.Var(s, "http_url") == nil
}

func (val *Validator) validateMCQContent(raw json.RawMessage) []FieldError {
	var c MCQContent
	if errs, ok := decodeContent(raw, &c); !ok {
		return errs
	}

	out := checkQuestionContent(c.QuestionContent)
	switch {
	case c.Options == nil:
		out = append(out, FieldError{Field: "content.options", Message: "Options are required"})
	case len(c.Options) < 2 || len(c.Options) > 10:
		out = append(out, FieldError{Field: "content.options", Message: "Must have between 2 and 10 options"})
	}
	for i, opt := range c.Options {
		prefix := fmt.Sprintf("content.options[%d]", i)
		if opt.ID == nil || strings.TrimSpace(*opt.ID) == "" {
			out = append(out, FieldError{Field: prefix + ".id", Message: "Option ID is required"})
		}
		if opt.Text == nil || strings.TrimSpace(*opt.Text) == "" {
			out = append(out, FieldError{Field: prefix + ".text", Message: "Option text is required"})
		} else if n := runeLen(*opt.Text); n > 1000 {
			out = append(out, FieldError{Field: prefix + ".text", Message: "Option text must be between 1 and 1000 characters"})
		}
		if opt.IsCorrect == nil {
			out = append(out, FieldError{Field: prefix + ".isCorrect", Message: "isCorrect must be a boolean"})
		}
	}
	out = append(out, checkAtLeastOneCorrect(correctFlagsMCQ(c.Options))...)
	return out
}

func (val *Validator) validateProgrammingContent(raw json.RawMessage) []FieldError {
	var c ProgrammingContent
	if errs, ok := decodeContent(raw, &c); !ok {
		return errs
	}

	out := checkQuestionContent(c.QuestionContent)
	if c.ProgrammingLanguage == nil || *c.ProgrammingLanguage == "" {
		out = append(out, FieldError{Field: "content.programmingLanguage", Message: "Programming language is required"})
	} else if !validProgrammingLanguages[*c.ProgrammingLanguage] {
		out = append(out, FieldError{Field: "content.programmingLanguage", Message: "Invalid programming language"})
	}
	if c.EvaluationMode == nil || *c.EvaluationMode == "" {
		out = append(out, FieldError{Field: "content.evaluationMode", Message: "Evaluation mode is required"})
	} else if !validEvaluationModes[*c.EvaluationMode] {
		out = append(out, FieldError{Field: "content.evaluationMode", Message: "Invalid evaluation mode"})
	}
	if c.TimeLimit == nil {
		out = append(out, FieldError{Field: "content.timeLimit", Message: "Time limit is required"})
	} else if *c.TimeLimit < 100 || *c.TimeLimit > 30000 {
		out = append(out, FieldError{Field: "content.timeLimit", Message: "Time limit must be between 100 and 30000 milliseconds"})
	}
	if c.MemoryLimit == nil {
		out = append(out, FieldError{Field: "content.memoryLimit", Message: "Memory limit is required"})
	} else if *c.MemoryLimit < 16 || *c.MemoryLimit > 1024 {
		out = append(out, FieldError{Field: "content.memoryLimit", Message: "Memory limit must be between 16 and 1024 MB"})
	}
	if c.CodeTheme == nil || *c.CodeTheme == "" {
		out = append(out, FieldError{Field: "content.codeTheme", Message: "Code theme is required"})
	} else if !validCodeThemes[*c.CodeTheme] {
		out = append(out, FieldError{Field: "content.codeTheme", Message: "Invalid code theme"})
	}
	if c.ShowTestCases == nil {
		out = append(out, FieldError{Field: "content.showTestCases", Message: "showTestCases must be a boolean"})
	}
	if c.AllowDebugging == nil {
		out = append(out, FieldError{Field: "content.allowDebugging", Message: "allowDebugging must be a boolean"})
	}
	if c.StarterCode != nil && runeLen(*c.StarterCode) > 10000 {
		out = append(out, FieldError{Field: "content.starterCode", Message: "Starter code must not exceed 10000 characters"})
	}
	switch {
	case c.TestCases == nil:
		out = append(out, FieldError{Field: "content.testCases", Message: "Test cases are required"})
	case len(c.TestCases) < 1 || len(c.TestCases) > 50:
		out = append(out, FieldError{Field: "content.testCases", Message: "Must have between 1 and 50 test cases"})
	}
	for i, tc := range c.TestCases {
		prefix := fmt.Sprintf("content.testCases[%d]", i)
		if tc.ID == nil || strings.TrimSpace(*tc.ID) == "" {
			out = append(out, FieldError{Field: prefix + ".id", Message: "Test case ID is required"})
		}
		if tc.Input == nil || *tc.Input == "" {
			out = append(out, FieldError{Field: prefix + ".input", Message: "Test case input is required"})
		}
		if tc.ExpectedOutput == nil || *tc.ExpectedOutput == "" {
			out = append(out, FieldError{Field: prefix + ".expectedOutput", Message: "Expected output is required"})
		}
		if tc.Points == nil || *tc.Points < 0 || *tc.Points > 100 {
			out = append(out, FieldError{Field: prefix + ".points", Message: "Test case points must be between 0 and 100"})
		}
		if tc.Description != nil && runeLen(*tc.Description) > 500 {
			out = append(out, FieldError{Field: prefix + ".description", Message: "Test case description must not exceed 500 characters"})
		}
		if tc.IsHidden == nil {
			out = append(out, FieldError{Field: prefix + ".isHidden", Message: "isHidden must be a boolean"})
		}
	}
	return out
}

func (val *Validator) validateDescriptiveContent(raw json.RawMessage) []FieldError {
	var c DescriptiveContent
	if errs, ok := decodeContent(raw, &c); !ok {
		return errs
	}

	out := checkQuestionContent(c.QuestionContent)
	if c.WordLimit != nil && (*c.WordLimit < 10 || *c.WordLimit > 10000) {
		out = append(out, FieldError{Field: "content.wordLimit", Message: "Word limit must be between 10 and 10000"})
	}
	if c.MinWords != nil && (*c.MinWords < 1 || *c.MinWords > 10000) {
		out = append(out, FieldError{Field: "content.minWords", Message: "Minimum words must be between 1 and 10000"})
	}
	if c.MaxWords != nil && (*c.MaxWords < 1 || *c.MaxWords > 10000) {
		out = append(out, FieldError{Field: "content.maxWords", Message: "Maximum words must be between 1 and 10000"})
	}
	// Cross-field rule; skipped when either side is absent.
	if c.MinWords != nil && c.MaxWords != nil && *c.MaxWords < *c.MinWords {
		out = append(out, FieldError{Field: "content.maxWords", Message: "Maximum words must be greater than minimum words"})
	}
	return out
}

func (val *Validator) validateImageBasedContent(raw json.RawMessage) []FieldError {
	var c ImageBasedContent
	if errs, ok := decodeContent(raw, &c); !ok {
		return errs
	}

	out := checkQuestionContent(c.QuestionContent)
	if c.QuestionImageURL != nil && !val.isHTTPURL(strings.TrimSpace(*c.QuestionImageURL)) {
		out = append(out, FieldError{Field: "content.questionImageUrl", Message: "Question image URL must be a valid URL"})
	}
	if c.QuestionImageAlt != nil && runeLen(*c.QuestionImageAlt) > 500 {
		out = append(out, FieldError{Field: "content.questionImageAlt", Message: "Question image alt text must not exceed 500 characters"})
	}
	switch {
	case c.Options == nil:
		out = append(out, FieldError{Field: "content.options", Message: "Options are required"})
	case len(c.Options) < 2 || len(c.Options) > 10:
		out = append(out, FieldError{Field: "content.options", Message: "Must have between 2 and 10 options"})
	}
	for i, opt := range c.Options {
		prefix := fmt.Sprintf("content.options[%d]", i)
		if opt.ID == nil || strings.TrimSpace(*opt.ID) == "" {
			out = append(out, FieldError{Field: prefix + ".id", Message: "Option ID is required"})
		}
		switch {
		case opt.ImageURL == nil || strings.TrimSpace(*opt.ImageURL) == "":
			out = append(out, FieldError{Field: prefix + ".imageUrl", Message: "Option image URL is required"})
		case !val.isHTTPURL(strings.TrimSpace(*opt.ImageURL)):
			out = append(out, FieldError{Field: prefix + ".imageUrl", Message: "Option image URL must be a valid URL"})
		}
		if opt.AltText != nil && runeLen(*opt.AltText) > 500 {
			out = append(out, FieldError{Field: prefix + ".altText", Message: "Alt text must not exceed 500 characters"})
		}
		if opt.IsCorrect == nil {
			out = append(out, FieldError{Field: prefix + ".isCorrect", Message: "isCorrect must be a boolean"})
		}
	}
	out = append(out, checkAtLeastOneCorrect(correctFlagsImage(c.Options))...)
	if c.DisplaySettings == nil {
		out = append(out,
			FieldError{Field: "content.displaySettings.allowZoom", Message: "allowZoom must be a boolean"},
			FieldError{Field: "content.displaySettings.showLabels", Message: "showLabels must be a boolean"},
			FieldError{Field: "content.displaySettings.showTextDescriptions", Message: "showTextDescriptions must be a boolean"},
			FieldError{Field: "content.displaySettings.randomizeOrder", Message: "randomizeOrder must be a boolean"},
		)
	} else {
		if c.DisplaySettings.AllowZoom == nil {
			out = append(out, FieldError{Field: "content.displaySettings.allowZoom", Message: "allowZoom must be a boolean"})
		}
		if c.DisplaySettings.ShowLabels == nil {
			out = append(out, FieldError{Field: "content.displaySettings.showLabels", Message: "showLabels must be a boolean"})
		}
		if c.DisplaySettings.ShowTextDescriptions == nil {
			out = append(out, FieldError{Field: "content.displaySettings.showTextDescriptions", Message: "showTextDescriptions must be a boolean"})
		}
		if c.DisplaySettings.RandomizeOrder == nil {
			out = append(out, FieldError{Field: "content.displaySettings.randomizeOrder", Message: "randomizeOrder must be a boolean"})
		}
	}
	return out
}

func correctFlagsMCQ(opts []MCQOption) []*bool {
	flags := make([]*bool, len(opts))
	for i, o := range opts {
		flags[i] = o.IsCorrect
	}
	return flags
}

func correctFlagsImage(opts []ImageOption) []*bool {
	flags := make([]*bool, len(opts))
	for i, o := range opts {
		flags[i] = o.IsCorrect
	}
	return flags
}

// checkAtLeastOneCorrect runs only when every isCorrect flag is present, so a
// missing flag is reported once by the per-field rule instead of twice.
func checkAtLeastOneCorrect(flags []*bool) []FieldError {
	if len(flags) == 0 {
		return nil
	}
	for _, f := range flags {
		if f == nil {
			return nil
		}
	}
	for _, f := range flags {
		if *f {
			return nil
		}
	}
	return []FieldError{{Field: "content.options", Message: "At least one option must be marked as correct"}}
}
