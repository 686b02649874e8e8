package question

import "encoding/json"

// Content variant shapes. Every field is a pointer (or slice) so the
// validators can tell a missing field apart from a zero value; decoding also
// rejects non-literal booleans and non-integer numbers outright.

type MCQOption struct {
	ID        *string `json:"id"`
	Text      *string `json:"text"`
	IsCorrect *bool   `json:"isCorrect"`
}

type MCQContent struct {
	QuestionContent *string     `json:"questionContent"`
	Options         []MCQOption `json:"options"`
}

type TestCase struct {
	ID             *string `json:"id"`
	Input          *string `json:"input"`
	ExpectedOutput *string `json:"expectedOutput"`
	Points         *int    `json:"points"`
	Description    *string `json:"description"`
	IsHidden       *bool   `json:"isHidden"`
}

type ProgrammingContent struct {
	QuestionContent     *string    `json:"questionContent"`
	ProgrammingLanguage *string    `json:"programmingLanguage"`
	EvaluationMode      *string    `json:"evaluationMode"`
	TimeLimit           *int       `json:"timeLimit"`
	MemoryLimit         *int       `json:"memoryLimit"`
	CodeTheme           *string    `json:"codeTheme"`
	ShowTestCases       *bool      `json:"showTestCases"`
	AllowDebugging      *bool      `json:"allowDebugging"`
	StarterCode         *string    `json:"starterCode"`
	TestCases           []TestCase `json:"testCases"`
}

type DescriptiveContent struct {
	QuestionContent *string `json:"questionContent"`
	WordLimit       *int    `json:"wordLimit"`
	MinWords        *int    `json:"minWords"`
	MaxWords        *int    `json:"maxWords"`
}

type ImageOption struct {
	ID        *string `json:"id"`
	ImageURL  *string `json:"imageUrl"`
	AltText   *string `json:"altText"`
	IsCorrect *bool   `json:"isCorrect"`
}

type ImageDisplaySettings struct {
	AllowZoom            *bool `json:"allowZoom"`
	ShowLabels           *bool `json:"showLabels"`
	ShowTextDescriptions *bool `json:"showTextDescriptions"`
	RandomizeOrder       *bool `json:"randomizeOrder"`
}

type ImageBasedContent struct {
	QuestionContent  *string               `json:"questionContent"`
	QuestionImageURL *string               `json:"questionImageUrl"`
	QuestionImageAlt *string               `json:"questionImageAlt"`
	Options          []ImageOption         `json:"options"`
	DisplaySettings  *ImageDisplaySettings `json:"displaySettings"`
}

// Closed enums referenced by the PROGRAMMING variant.
var validProgrammingLanguages = map[string]bool{
	"JAVASCRIPT": true,
	"PYTHON":     true,
	"JAVA":       true,
	"CPP":        true,
	"C":          true,
	"CSHARP":     true,
	"GO":         true,
	"RUST":       true,
}

var validEvaluationModes = map[string]bool{
	"AUTOMATIC": true,
	"MANUAL":    true,
}

var validCodeThemes = map[string]bool{
	"LIGHT":   true,
	"DARK":    true,
	"MONOKAI": true,
	"DRACULA": true,
}

// contentRules maps a type tag to its variant validator. An unrecognized tag
// has no entry, so content rules are simply skipped and the service reports
// the unknown type later.
func (val *Validator) contentRules() map[Type]func(json.RawMessage) []FieldError {
	return map[Type]func(json.RawMessage) []FieldError{
		TypeMCQ:         val.validateMCQContent,
		TypeProgramming: val.validateProgrammingContent,
		TypeDescriptive: val.validateDescriptiveContent,
		TypeImageBased:  val.validateImageBasedContent,
	}
}
