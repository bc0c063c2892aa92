package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is returned for any non-2xx response.
// Its message is the server's "message" field when one was sent.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// errorBody is the error shape the API sends; every field is optional.
type errorBody struct {
	Message string `json:"message"`
}

func errorFromResponse(resp *http.Response) *Error {
	msg := fmt.Sprintf("HTTP Error %d", resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		}
	}

	return &Error{Status: resp.StatusCode, Message: msg}
}

// StatusOf returns the HTTP status carried by err, or 0 if err did not come
// from a response.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
