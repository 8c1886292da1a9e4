package models

// LogsRequest is the /api/logs query. Without after every retained line
// is eligible; severity is a minimum.
type LogsRequest struct {
	After    uint64 `query:"after"`
	Limit    int    `query:"limit" default:"200" validate:"min=1,max=1000"`
	Severity string `query:"severity" validate:"omitempty,oneof=INFO WARN ERROR"`
}

// RefreshRequest names the source to re-poll.
type RefreshRequest struct {
	ID string `param:"id" validate:"required"`
}

// LogsResponse is one page of the log tail. Next is the after value for
// the following page.
type LogsResponse struct {
	Lines   []LogLine `json:"lines"`
	Next    uint64    `json:"next"`
	Highest uint64    `json:"highest"`
	More    bool      `json:"more"`
}
