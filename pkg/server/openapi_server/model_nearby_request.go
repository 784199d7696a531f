// SPDX-License-Identifier: MIT

package openapi_server

import (
	"github.com/natevvv/indoor-routing/pkg/routing"
)

type NearbyRequest struct {
	Origin            routing.NavigationTarget   `json:"origin"`
	Options           RequestOptions             `json:"options"`
	MaxTravelDistance float64                    `json:"maxTravelDistance"`
	Candidates        []routing.NavigationTarget `json:"candidates,omitempty"`
	Limit             int                        `json:"limit,omitempty"`
	LineOfSight       bool                       `json:"lineOfSight,omitempty"`
	LineOfSightBuffer float64                    `json:"lineOfSightBuffer,omitempty"`
}

func AssertNearbyRequestRequired(obj NearbyRequest) error {
	elements := map[string]interface{}{
		"origin":            obj.Origin,
		"maxTravelDistance": obj.MaxTravelDistance,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return AssertRequestOptionsRequired(obj.Options)
}

func (r NearbyRequest) NearbyOptions() routing.NearbyOptions {
	return routing.NearbyOptions{
		Options:           r.Options.Options(),
		MaxTravelDistance: r.MaxTravelDistance,
		Candidates:        r.Candidates,
		Limit:             r.Limit,
		LineOfSight:       r.LineOfSight,
		LineOfSightBuffer: r.LineOfSightBuffer,
	}
}
