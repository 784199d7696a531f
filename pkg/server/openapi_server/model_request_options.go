// SPDX-License-Identifier: MIT

package openapi_server

import (
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/routing"
)

type EdgeWeightOverride struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

func AssertEdgeWeightOverrideRequired(obj EdgeWeightOverride) error {
	elements := map[string]interface{}{
		"from": obj.From,
		"to":   obj.To,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return nil
}

type RequestOptions struct {
	Accessible          bool                 `json:"accessible,omitempty"`
	Smoothing           *routing.Smoothing   `json:"smoothing,omitempty"`
	ExcludedConnections []string             `json:"excludedConnections,omitempty"`
	Zones               []Zone               `json:"zones,omitempty"`
	EdgeWeightOverrides []EdgeWeightOverride `json:"edgeWeightOverrides,omitempty"`
}

func AssertRequestOptionsRequired(obj RequestOptions) error {
	for _, el := range obj.Zones {
		if err := AssertZoneRequired(el); err != nil {
			return err
		}
	}
	for _, el := range obj.EdgeWeightOverrides {
		if err := AssertEdgeWeightOverrideRequired(el); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the request options for the router
func (o RequestOptions) Options() routing.Options {
	opts := routing.Options{
		Accessible:          o.Accessible,
		Smoothing:           o.Smoothing,
		ExcludedConnections: o.ExcludedConnections,
	}
	for _, z := range o.Zones {
		opts.Zones = append(opts.Zones, z.CostZone())
	}
	if len(o.EdgeWeightOverrides) > 0 {
		opts.EdgeWeightOverrides = make(map[graph.EdgeKey]float64, len(o.EdgeWeightOverrides))
		for _, override := range o.EdgeWeightOverrides {
			opts.EdgeWeightOverrides[graph.EdgeKey{From: override.From, To: override.To}] = override.Weight
		}
	}
	return opts
}
