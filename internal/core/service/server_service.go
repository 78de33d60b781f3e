package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
	"github.com/rs/zerolog"
)

type ServerService struct {
	serverRepo repository.ServerRepository
	pagination PaginationPolicy
	logger     zerolog.Logger
}

func NewServerService(serverRepo repository.ServerRepository, pagination PaginationPolicy, logger zerolog.Logger) *ServerService {
	return &ServerService{
		serverRepo: serverRepo,
		pagination: pagination,
		logger:     logger.With().Str("component", "servers").Logger(),
	}
}

// Pagination returns the page size policy applied by ListServers
func (s *ServerService) Pagination() PaginationPolicy {
	return s.pagination
}

// FilterServers narrows the full server collection according to req.
//
// Filters run in a fixed order: category, membership, member count
// annotation, server id, quantity. The first failing step aborts the whole
// request.
func (s *ServerService) FilterServers(ctx context.Context, req FilterRequest, auth AuthContext) (repository.ServerQuery, error) {
	return filterServers(ctx, s.serverRepo.All(), req, auth)
}

func filterServers(ctx context.Context, query repository.ServerQuery, req FilterRequest, auth AuthContext) (repository.ServerQuery, error) {
	if req.Category != "" {
		query = query.FilterBy(repository.FieldCategory, req.Category)
	}

	if req.ByUser {
		if !auth.Authenticated {
			return nil, NewAuthenticationRequired()
		}
		var member interface{}
		if auth.UserID != nil {
			member = *auth.UserID
		}
		query = query.FilterBy(repository.FieldMember, member)
	}

	if req.WithNumMembers {
		query = query.AnnotateMemberCount()
	}

	if req.ByServerID != "" {
		var err error
		query, err = filterByServerID(ctx, query, req.ByServerID, auth)
		if err != nil {
			return nil, err
		}
	}

	if req.Qty != "" {
		qty, err := parseQty(req.Qty)
		if err != nil {
			return nil, NewInvalidParameter("qty must be an integer")
		}
		query = query.Slice(qty)
	}

	return query, nil
}

func filterByServerID(ctx context.Context, query repository.ServerQuery, raw string, auth AuthContext) (repository.ServerQuery, error) {
	if !auth.Authenticated {
		return nil, NewAuthenticationRequired()
	}

	id, err := parseInt(raw)
	if errors.Is(err, strconv.ErrRange) {
		// no row carries an id outside int64
		return nil, NewNotFound(fmt.Sprintf("Server with id-%s not found", raw))
	}
	if err != nil {
		return nil, NewInvalidParameter("Server id must be an integer")
	}

	query = query.FilterBy(repository.FieldID, id)
	exists, err := query.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewNotFound(fmt.Sprintf("Server with id-%s not found", raw))
	}
	return query, nil
}

// ServerList is the outcome of a listing call. Page is nil when pagination
// is disabled, in which case Items holds the whole filtered collection.
type ServerList struct {
	Items []*domain.Server
	Page  *Page
}

// ListServers filters the collection and resolves the requested page.
func (s *ServerService) ListServers(ctx context.Context, req FilterRequest, auth AuthContext, page PageRequest) (*ServerList, error) {
	query, err := s.FilterServers(ctx, req, auth)
	if err != nil {
		s.logger.Debug().Err(err).Interface("request", req).Msg("server filter rejected")
		return nil, err
	}

	s.logger.Debug().
		Interface("request", req).
		Bool("authenticated", auth.Authenticated).
		Int("filters", len(query.Filter().Filters)).
		Msg("server filter applied")

	resolved, err := s.pagination.Paginate(ctx, query, page)
	if err != nil {
		return nil, err
	}
	if resolved != nil {
		return &ServerList{Items: resolved.Items, Page: resolved}, nil
	}

	items, err := query.Fetch(ctx, 0, -1)
	if err != nil {
		return nil, err
	}
	return &ServerList{Items: items}, nil
}
