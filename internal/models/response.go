package models

// APIResponse is the uniform envelope for single-item operations.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// PaginatedResponse wraps listing results. Data is always present, even
// when the page is empty.
type PaginatedResponse struct {
	Success    bool       `json:"success"`
	Data       []Task     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func NewPagination(total int64, limit, offset int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasNext: int64(offset+limit) < total,
		HasPrev: offset > 0,
	}
}
