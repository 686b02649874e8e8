package apiresp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// Envelope is the uniform response wrapper. Stack carries diagnostic detail
// and is only populated outside production.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Errors     any         `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Stack      string      `json:"stack,omitempty"`
	RequestID  string      `json:"requestId,omitempty"`
}

func WriteData(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, r, status, Envelope{Success: true, Message: message, Data: data})
}

func WritePage(w http.ResponseWriter, r *http.Request, message string, data any, p Pagination) {
	write(w, r, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, status, Envelope{Success: false, Message: message})
}

// WriteErrors reports a validation failure with its per-field violation list.
func WriteErrors(w http.ResponseWriter, r *http.Request, status int, message string, errs any) {
	write(w, r, status, Envelope{Success: false, Message: message, Errors: errs})
}

// WriteInternal answers 500. diag is included only when the caller decided
// the environment may see it.
func WriteInternal(w http.ResponseWriter, r *http.Request, diag string) {
	write(w, r, http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "Internal Server Error",
		Stack:   diag,
	})
}

func write(w http.ResponseWriter, r *http.Request, status int, res Envelope) {
	res.RequestID = middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
