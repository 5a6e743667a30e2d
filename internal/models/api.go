package models

type QueryRequest struct {
	Query string `json:"query"`
}

type HistoryResponse struct {
	Records []QueryRecord `json:"records"`
	Total   int           `json:"total"`
	// StatusCounts covers every session over Window, whatever the scope.
	StatusCounts map[string]int64 `json:"status_counts,omitempty"`
	Window       string           `json:"window,omitempty"`
}
