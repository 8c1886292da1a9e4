package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" msgpack:"status" example:"200"`
	Message string      `json:"message" msgpack:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"after"`
	Message string                 `json:"message,omitempty" example:"after is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
