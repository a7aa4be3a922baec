package models

// Envelope wraps every backend response.
type Envelope[T any] struct {
	Success    bool   `json:"success"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
	TotalCount int    `json:"totalCount,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Page       int    `json:"page,omitempty"`
}
