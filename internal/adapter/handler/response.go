package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/srgjo27/campus_ticket/internal/platform/logger"
)

type ErrorResponse struct {
	StatusCode  int    `json:"-"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

func (r ErrorResponse) Error() string {
	return fmt.Sprintf("StatusCode: %d, Message: %s, Status: %s, Description: %s", r.StatusCode, r.Message, r.Status, r.Description)
}

func (r ErrorResponse) Send(ctx context.Context, w http.ResponseWriter) {
	if r.StatusCode >= http.StatusInternalServerError {
		logger.Errorf(ctx, "%s", r.Error())
	} else {
		logger.Debugf(ctx, "%s", r.Error())
	}
	writeJSON(w, r.StatusCode, r)
}

func BadRequest(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Message:     message,
		Status:      "BAD_REQUEST",
		Description: description,
	}
}

func ResourceNotFound(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusNotFound,
		Message:    message,
		Status:     "NOT_FOUND",
	}
}

func Unauthorized() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Message:    "Missing or invalid operator identity",
		Status:     "UNAUTHORISED",
	}
}

func Forbidden(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusForbidden,
		Message:    message,
		Status:     "FORBIDDEN",
	}
}

func Conflict(message, status string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Message:    message,
		Status:     status,
	}
}

func Gone(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusGone,
		Message:    message,
		Status:     "GONE",
	}
}

func MethodNotAllowed(message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusMethodNotAllowed,
		Message:    message,
		Status:     "METHOD_NOT_ALLOWED",
	}
}

func RequestTooLarge() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusRequestEntityTooLarge,
		Message:    fmt.Sprintf("Request body exceeds %d bytes", maxBodyBytes),
		Status:     "REQUEST_TOO_LARGE",
	}
}

func SomethingWrong() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Message:    "Sorry, Something went wrong",
		Status:     "SOMETHING_WRONG",
	}
}

// maxBodyBytes bounds every JSON request body. Tokens and ticket numbers are
// well under a kilobyte.
const maxBodyBytes = 16 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) *ErrorResponse {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			resp := RequestTooLarge()
			return &resp
		}
		resp := BadRequest("Invalid JSON body", err.Error())
		return &resp
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
