package dto

// Response is the envelope every endpoint returns.
type Response struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       interface{}       `json:"data,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

// Pagination describes a 1-indexed page window over the team listing.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalTeams  int64 `json:"totalTeams"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	return &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalTeams:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

type PaginationParams struct {
	Page  int
	Limit int
}

func (p *PaginationParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
