// SPDX-License-Identifier: MIT

package openapi_server

import (
	"net/http"

	"github.com/natevvv/indoor-routing/pkg/graph/path"
	"github.com/natevvv/indoor-routing/pkg/routing"
	"github.com/natevvv/indoor-routing/pkg/zone"
	"github.com/pkg/errors"
)

var (
	// ErrTypeAssertionError is thrown when type an interface does not match the asserted type
	ErrTypeAssertionError = errors.New("unable to assert type")
)

// ParsingError indicates that an error has occurred when parsing request parameters
type ParsingError struct {
	Err error
}

func (e *ParsingError) Unwrap() error {
	return e.Err
}

func (e *ParsingError) Error() string {
	return e.Err.Error()
}

// RequiredError indicates that an error has occurred when parsing request parameters
type RequiredError struct {
	Field string
}

func (e *RequiredError) Error() string {
	return "required field '" + e.Field + "' is zero value."
}

// ErrorHandler defines the required method for handling error. You may implement it and inject this into a controller if
// you would like errors to be handled differently from the DefaultErrorHandler
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error, result *ImplResponse)

type errorBody struct {
	Error string `json:"error"`
}

// StatusOf maps an error to the http status of the response
func StatusOf(err error, result *ImplResponse) int {
	var parsingError *ParsingError
	var requiredError *RequiredError
	switch {
	case errors.As(err, &parsingError), errors.As(err, &requiredError):
		return http.StatusBadRequest
	case errors.Is(err, routing.ErrUnresolvableTarget), errors.Is(err, path.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, path.ErrInvalidQueryOption), errors.Is(err, path.ErrUnknownNavigator), errors.Is(err, zone.ErrInvalidZone):
		return http.StatusBadRequest
	case result != nil && result.Code != 0:
		return result.Code
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorHandler defines the default logic on how to handle errors from the controller. Any errors from parsing
// request params will return a StatusBadRequest. Otherwise, the error code originating from the servicer will be used.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error, result *ImplResponse) {
	status := StatusOf(err, result)
	EncodeJSONResponse(errorBody{Error: err.Error()}, &status, w)
}
