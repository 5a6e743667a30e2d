package medical

import "encoding/json"

// QueryRequest is the body posted to the medical query endpoint.
// Field order is the wire order.
type QueryRequest struct {
	Query   string                 `json:"query"`
	UserID  string                 `json:"user_id"`
	Context map[string]interface{} `json:"context"`
}

// NewQueryRequest builds a request with an empty, non-nil context so it
// encodes as {} rather than null.
func NewQueryRequest(query, userID string) QueryRequest {
	return QueryRequest{
		Query:   query,
		UserID:  userID,
		Context: map[string]interface{}{},
	}
}

// QueryResponse is whatever JSON the backend answered with. No schema is
// enforced here; see the view package for narrowing.
type QueryResponse = json.RawMessage
