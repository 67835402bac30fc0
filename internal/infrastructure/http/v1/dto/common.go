// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
)

// --- Pagination ---

// ListRequest contains search and offset pagination parameters.
type ListRequest struct {
	Search  string `form:"search"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the request into a domain filter.
func (r ListRequest) ToFilter() domain.ListFilter {
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(r.Search)
	if r.OrderBy != "" {
		f.OrderBy = r.OrderBy
	}
	if r.Limit > 0 {
		f.Limit = r.Limit
	}
	f.Offset = r.Offset
	return f
}

// PageRequest contains page based pagination parameters.
type PageRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// Defaults sets default pagination values.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PerPage == 0 {
		p.PerPage = 10
	}
}

// Offset calculates SQL offset.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ToFilter converts the request into a domain filter.
func (p *PageRequest) ToFilter() domain.ListFilter {
	p.Defaults()
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(p.Search)
	f.Limit = p.PerPage
	f.Offset = p.Offset()
	return f
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps list items with fn.
func NewListResponse[T any, R any](res domain.ListResult[T], fn func(T) R) ListResponse {
	return ListResponse{
		Items:      lo.Map(res.Items, func(item T, _ int) R { return fn(item) }),
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// PageResponse is a page of results with the total match count.
type PageResponse struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Data    any   `json:"data"`
}

// NewPageResponse maps page items with fn.
func NewPageResponse[T any, R any](req PageRequest, res domain.ListResult[T], fn func(T) R) PageResponse {
	return PageResponse{
		Total:   res.TotalCount,
		Page:    req.Page,
		PerPage: req.PerPage,
		Data:    lo.Map(res.Items, func(item T, _ int) R { return fn(item) }),
	}
}

// Identity returns v unchanged. Used where entities are rendered as is.
func Identity[T any](v T) T { return v }

// --- Field helpers ---

// Date is a calendar day. It accepts "2006-01-02" and RFC 3339 timestamps.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// Ptr returns the date as *time.Time, nil for a nil receiver.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// ParseID parses a reference field, reporting the field on failure.
func ParseID(field, value string) (id.ID, error) {
	v, err := id.Parse(strings.TrimSpace(value))
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id format").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return v, nil
}

// ParseOptionalID parses an optional reference field.
func ParseOptionalID(field string, value *string) (*id.ID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	v, err := ParseID(field, *value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
