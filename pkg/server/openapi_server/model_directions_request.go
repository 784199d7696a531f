// SPDX-License-Identifier: MIT

package openapi_server

import (
	"github.com/natevvv/indoor-routing/pkg/routing"
	"github.com/pkg/errors"
)

// response formats
const (
	FormatJson    = "json"
	FormatGeoJson = "geojson"
)

type DirectionsRequest struct {
	From    routing.NavigationTarget `json:"from"`
	To      routing.NavigationTarget `json:"to"`
	Options RequestOptions           `json:"options"`
	Format  string                   `json:"format,omitempty"` // json if empty
}

func AssertDirectionsRequestRequired(obj DirectionsRequest) error {
	elements := map[string]interface{}{
		"from": obj.From,
		"to":   obj.To,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	if err := assertFormat(obj.Format); err != nil {
		return err
	}
	return AssertRequestOptionsRequired(obj.Options)
}

type MultiDirectionsRequest struct {
	From    routing.NavigationTarget   `json:"from"`
	To      []routing.NavigationTarget `json:"to"`
	Options RequestOptions             `json:"options"`
}

func AssertMultiDirectionsRequestRequired(obj MultiDirectionsRequest) error {
	elements := map[string]interface{}{
		"from": obj.From,
		"to":   obj.To,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return AssertRequestOptionsRequired(obj.Options)
}

func assertFormat(format string) error {
	switch format {
	case "", FormatJson, FormatGeoJson:
		return nil
	}
	return &ParsingError{Err: errors.Errorf("unknown format %q", format)}
}
