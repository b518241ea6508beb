// Package graphql serves a graphql-go schema over HTTP.
//
//	schema, _ := graphql.NewSchema(rootQuery)
//	r.Method(http.MethodPost, "/graphql", "graphql", graphql.Handler(schema))
package graphql

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/minimalshop/pkg/logger"
)

// maxBody bounds POSTed query documents.
const maxBody = 1 << 20

// NewSchema builds a read-only schema from a root query.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is the standard GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Do executes req against schema.
func Do(ctx context.Context, schema graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// Handler answers GET (?query=&operationName=&variables=) and POST (JSON
// body). Execution errors are reported in the result with status 200;
// an unreadable request is a 400.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseRequest(w, r)
		if err != nil || req.Query == "" {
			msg := "missing query"
			if err != nil {
				msg = err.Error()
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"errors": []map[string]string{{"message": msg}},
			})
			return
		}

		result := Do(r.Context(), schema, req)
		if result.HasErrors() {
			logger.WithCtx(r.Context()).Warn("graphql query failed",
				"operation", req.OperationName, "errors", len(result.Errors))
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func parseRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	var req Request
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, err
			}
		}
		return req, nil
	}

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req)
	return req, err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
