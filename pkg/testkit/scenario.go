// Package testkit runs JSON-described HTTP scenarios against a handler.
//
// A scenario file holds an array of cases:
//
//	[
//	  {
//	    "name": "unknown product",
//	    "requestMethod": "GET",
//	    "requestUrl": "/api/products/nope",
//	    "expectedCode": 404,
//	    "response": {"status": 404, "message": "Not found"}
//	  }
//	]
//
// and is run from a test:
//
//	func TestAPI(t *testing.T) {
//	    testkit.RunFile(t, handler, "testdata/api_scenarios.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scenario is one request and what its response must look like.
type Scenario struct {
	Name string `json:"name"`

	RequestMethod string            `json:"requestMethod"` // defaults to GET
	RequestURL    string            `json:"requestUrl"`
	Headers       map[string]string `json:"headers"`
	Body          json.RawMessage   `json:"body"`

	ExpectedCode int `json:"expectedCode"`
	// Response, when set, must equal the JSON body ignoring key order.
	Response json.RawMessage `json:"response"`
	// Contains lists substrings the raw body must include.
	Contains []string `json:"contains"`
	// ExpectedHeaders must be present with these values.
	ExpectedHeaders map[string]string `json:"expectedHeaders"`
}

// LoadScenarios reads an array of scenarios from path.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", path, err)
	}

	var list []Scenario
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", path, err)
	}
	for i, s := range list {
		if s.Name == "" {
			return nil, fmt.Errorf("testkit: %q: scenario %d has no name", path, i)
		}
		if s.RequestURL == "" {
			return nil, fmt.Errorf("testkit: %q: scenario %q has no requestUrl", path, s.Name)
		}
		if s.ExpectedCode == 0 {
			list[i].ExpectedCode = 200
		}
	}
	return list, nil
}
