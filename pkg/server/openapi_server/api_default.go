package openapi_server

import (
	"encoding/json"
	"net/http"
	"strings"
)

// DefaultApiController binds http requests to an api service and writes the service results to the http response
type DefaultApiController struct {
	service      DefaultApiServicer
	errorHandler ErrorHandler
}

// DefaultApiOption for how the controller is set up.
type DefaultApiOption func(*DefaultApiController)

// WithDefaultApiErrorHandler inject ErrorHandler into controller
func WithDefaultApiErrorHandler(h ErrorHandler) DefaultApiOption {
	return func(c *DefaultApiController) {
		c.errorHandler = h
	}
}

// NewDefaultApiController creates a default api controller
func NewDefaultApiController(s DefaultApiServicer, opts ...DefaultApiOption) Router {
	controller := &DefaultApiController{
		service:      s,
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// Routes returns all of the api route for the DefaultApiController
func (c *DefaultApiController) Routes() Routes {
	return Routes{
		{
			"GetDirections",
			strings.ToUpper("Post"),
			"/directions",
			c.GetDirections,
		},
		{
			"GetDirectionsMulti",
			strings.ToUpper("Post"),
			"/directions/multi",
			c.GetDirectionsMulti,
		},
		{
			"FindNearby",
			strings.ToUpper("Post"),
			"/nearby",
			c.FindNearby,
		},
		{
			"GetNodes",
			strings.ToUpper("Get"),
			"/nodes",
			c.GetNodes,
		},
		{
			"SetNavigator",
			strings.ToUpper("Post"),
			"/navigator",
			c.SetNavigator,
		},
	}
}

func decode(r *http.Request, v interface{}) error {
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		return &ParsingError{Err: err}
	}
	return nil
}

func (c *DefaultApiController) respond(w http.ResponseWriter, r *http.Request, methods string, result ImplResponse, err error) {
	// If an error occurred, encode the error with the status code
	if err != nil {
		c.errorHandler(w, r, err, &result)
		return
	}
	// If no error, encode the body and the result code
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	EncodeJSONResponse(result.Body, &result.Code, w)
}

// GetDirections - Compute the directions between two targets
func (c *DefaultApiController) GetDirections(w http.ResponseWriter, r *http.Request) {
	directionsRequestParam := DirectionsRequest{}
	if err := decode(r, &directionsRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	if err := AssertDirectionsRequestRequired(directionsRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetDirections(r.Context(), directionsRequestParam)
	c.respond(w, r, "POST", result, err)
}

// GetDirectionsMulti - Compute the directions from one target to several destinations
func (c *DefaultApiController) GetDirectionsMulti(w http.ResponseWriter, r *http.Request) {
	multiDirectionsRequestParam := MultiDirectionsRequest{}
	if err := decode(r, &multiDirectionsRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	if err := AssertMultiDirectionsRequestRequired(multiDirectionsRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.GetDirectionsMulti(r.Context(), multiDirectionsRequestParam)
	c.respond(w, r, "POST", result, err)
}

// FindNearby - Find the nodes within a travel distance
func (c *DefaultApiController) FindNearby(w http.ResponseWriter, r *http.Request) {
	nearbyRequestParam := NearbyRequest{}
	if err := decode(r, &nearbyRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	if err := AssertNearbyRequestRequired(nearbyRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.FindNearby(r.Context(), nearbyRequestParam)
	c.respond(w, r, "POST", result, err)
}

func (c *DefaultApiController) GetNodes(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetNodes(r.Context(), r.URL.Query().Get("floor"))
	c.respond(w, r, "GET", result, err)
}

func (c *DefaultApiController) SetNavigator(w http.ResponseWriter, r *http.Request) {
	navigatorRequestParam := NavigatorRequest{}
	if err := decode(r, &navigatorRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	if err := AssertNavigatorRequestRequired(navigatorRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.SetNavigator(r.Context(), navigatorRequestParam)
	c.respond(w, r, "POST", result, err)
}
