// SPDX-License-Identifier: MIT

package openapi_server

// NavigatorRequest selects the search algorithm of all following queries: "astar", "dijkstra" or "plain-dijkstra"
type NavigatorRequest struct {
	Navigator string `json:"navigator"`
}

func AssertNavigatorRequestRequired(obj NavigatorRequest) error {
	elements := map[string]interface{}{
		"navigator": obj.Navigator,
	}
	for name, el := range elements {
		if isZero := IsZeroValue(el); isZero {
			return &RequiredError{Field: name}
		}
	}
	return nil
}
