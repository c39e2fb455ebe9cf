package model

import "time"

// Response wraps every API answer. Status is "ok" with Data set, or "error"
// with Error set.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error,omitempty"`
}

// Pagination describes one page of run history.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPagination describes the page opts selects out of total runs.
func NewPagination(total int, opts ListOptions) *Pagination {
	return &Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+opts.Limit < total,
	}
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListOptions selects a page of recorded runs.
type ListOptions struct {
	Limit  int
	Offset int
	Policy PolicyKind // empty lists every policy
}

// DefaultListOptions returns the first page with the default size.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: DefaultListLimit}
}

// Clamp keeps Limit within [1, MaxListLimit] and Offset non-negative.
func (o *ListOptions) Clamp() {
	switch {
	case o.Limit <= 0:
		o.Limit = DefaultListLimit
	case o.Limit > MaxListLimit:
		o.Limit = MaxListLimit
	}
	o.Offset = max(o.Offset, 0)
}
