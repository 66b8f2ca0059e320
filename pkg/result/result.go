// Package result holds the envelope returned by every repository and
// service operation. StatusCode reuses HTTP status numbers purely as an
// error classification.
package result

import "net/http"

type Result[T any] struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       T                 `json:"data"`
	StatusCode int               `json:"status_code"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func OK[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message, StatusCode: http.StatusOK}
}

func Created[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message, StatusCode: http.StatusCreated}
}

func Fail[T any](code int, message string) Result[T] {
	return Result[T]{Message: message, StatusCode: code}
}

func BadRequest[T any](message string) Result[T] {
	return Fail[T](http.StatusBadRequest, message)
}

// Invalid is a 400 carrying field level details.
func Invalid[T any](message string, errors map[string]string) Result[T] {
	return Result[T]{Message: message, StatusCode: http.StatusBadRequest, Errors: errors}
}

func Unauthorized[T any](message string) Result[T] {
	return Fail[T](http.StatusUnauthorized, message)
}

func NotFound[T any](message string) Result[T] {
	return Fail[T](http.StatusNotFound, message)
}

func Internal[T any](message string) Result[T] {
	return Fail[T](http.StatusInternalServerError, message)
}

// Forward re-types a failed result so it can be passed up unchanged.
func Forward[T, U any](r Result[U]) Result[T] {
	return Result[T]{
		Success:    r.Success,
		Message:    r.Message,
		StatusCode: r.StatusCode,
		Errors:     r.Errors,
	}
}

func (r Result[T]) IsNotFound() bool {
	return r.StatusCode == http.StatusNotFound
}

func (r Result[T]) IsInternal() bool {
	return r.StatusCode >= http.StatusInternalServerError
}
