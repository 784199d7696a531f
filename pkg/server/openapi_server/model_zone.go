// SPDX-License-Identifier: MIT

package openapi_server

import (
	"math"

	"github.com/natevvv/indoor-routing/pkg/zone"
	"github.com/paulmach/orb/geojson"
)

// Zone is a GeoJSON polygon or multi polygon with a cost surcharge
type Zone struct {
	Geometry       *geojson.Geometry `json:"geometry"`
	AdditionalCost float64           `json:"additionalCost,omitempty"`
	Forbidden      bool              `json:"forbidden,omitempty"` // overrides AdditionalCost with +Inf
	Floor          string            `json:"floor,omitempty"`
}

func AssertZoneRequired(obj Zone) error {
	elements := map[string]interface{}{
		"geometry": obj.Geometry,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return nil
}

func (z Zone) CostZone() zone.CostZone {
	cost := z.AdditionalCost
	if z.Forbidden {
		cost = math.Inf(1)
	}
	c := zone.CostZone{AdditionalCost: cost, Floor: z.Floor}
	if z.Geometry != nil {
		c.Geometry = z.Geometry.Geometry()
	}
	return c
}
