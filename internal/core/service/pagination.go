package service

import (
	"context"
	"net/url"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
)

const (
	DefaultPageSize           = 10
	DefaultMaxPageSize        = 100
	DefaultPageSizeQueryParam = "page_size"
	DefaultPageQueryParam     = "page"

	// lastPage selects the final page instead of a number
	lastPage = "last"
)

// PaginationPolicy controls how a filtered collection is split into pages.
// A DefaultPageSize of zero disables pagination unless the caller asks for a
// page size explicitly.
type PaginationPolicy struct {
	DefaultPageSize    int
	MaxPageSize        int
	PageSizeQueryParam string
	PageQueryParam     string
}

func DefaultPaginationPolicy() PaginationPolicy {
	return PaginationPolicy{
		DefaultPageSize:    DefaultPageSize,
		MaxPageSize:        DefaultMaxPageSize,
		PageSizeQueryParam: DefaultPageSizeQueryParam,
		PageQueryParam:     DefaultPageQueryParam,
	}
}

// PageRequest holds the raw page parameters of one call
type PageRequest struct {
	Page     string
	PageSize string
}

// PageRequest extracts the page parameters named by the policy.
func (p PaginationPolicy) PageRequest(params url.Values) PageRequest {
	req := PageRequest{Page: params.Get(p.PageQueryParam)}
	if p.PageSizeQueryParam != "" {
		req.PageSize = params.Get(p.PageSizeQueryParam)
	}
	return req
}

// PageSize resolves the effective page size: a strictly positive override
// clamped to MaxPageSize, else the default.
func (p PaginationPolicy) PageSize(raw string) int {
	if p.PageSizeQueryParam != "" && raw != "" {
		if size, err := parseInt(raw); err == nil && size > 0 {
			if p.MaxPageSize > 0 && size > int64(p.MaxPageSize) {
				return p.MaxPageSize
			}
			return int(size)
		}
	}
	return p.DefaultPageSize
}

type Page struct {
	Items    []*domain.Server
	Count    int
	Number   int
	PageSize int
	NumPages int
}

func (p *Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

// Paginate fetches one page of query. It returns a nil page when pagination
// is disabled for this request.
func (p PaginationPolicy) Paginate(ctx context.Context, query repository.ServerQuery, req PageRequest) (*Page, error) {
	size := p.PageSize(req.PageSize)
	if size <= 0 {
		return nil, nil
	}

	count, err := query.Count(ctx)
	if err != nil {
		return nil, err
	}

	numPages := 1
	if count > 0 {
		numPages = (count + size - 1) / size
	}

	number, err := pageNumber(req.Page, numPages)
	if err != nil {
		return nil, err
	}

	items, err := query.Fetch(ctx, (number-1)*size, size)
	if err != nil {
		return nil, err
	}

	return &Page{
		Items:    items,
		Count:    count,
		Number:   number,
		PageSize: size,
		NumPages: numPages,
	}, nil
}

func pageNumber(raw string, numPages int) (int, error) {
	if raw == "" {
		return 1, nil
	}
	if raw == lastPage {
		return numPages, nil
	}

	number, err := parseInt(raw)
	if err != nil || number < 1 || number > int64(numPages) {
		return 0, NewNotFound("Invalid page.")
	}
	return int(number), nil
}
