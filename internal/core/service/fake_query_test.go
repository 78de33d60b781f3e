package service

import (
	"context"
	"slices"

	"github.com/martijn/serverlist/internal/api/util"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
)

// fakeServerRepository keeps servers in memory and evaluates queries the way
// the SQL store does.
type fakeServerRepository struct {
	servers []*domain.Server
	members map[int64][]int64
	nextID  int64

	existsCalls int
}

func newFakeServerRepository() *fakeServerRepository {
	return &fakeServerRepository{members: make(map[int64][]int64)}
}

func (r *fakeServerRepository) add(name, category string, members ...int64) *domain.Server {
	r.nextID++
	server := &domain.Server{ID: r.nextID, Name: name, CategoryName: category, OwnerID: 1}
	r.servers = append(r.servers, server)
	r.members[server.ID] = members
	return server
}

func (r *fakeServerRepository) All() repository.ServerQuery {
	return &fakeServerQuery{repo: r}
}

func (r *fakeServerRepository) Create(ctx context.Context, server *domain.Server) error {
	r.nextID++
	server.ID = r.nextID
	r.servers = append(r.servers, server)
	return nil
}

func (r *fakeServerRepository) FindByID(ctx context.Context, id int64) (*domain.Server, error) {
	for _, s := range r.servers {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeServerRepository) AddMember(ctx context.Context, serverID, userID int64) error {
	r.members[serverID] = append(r.members[serverID], userID)
	return nil
}

type fakeServerQuery struct {
	repo   *fakeServerRepository
	filter repository.ServerFilter
}

func (q *fakeServerQuery) FilterBy(field string, value interface{}) repository.ServerQuery {
	next := *q
	next.filter.ListFilter = q.filter.WithFilter(util.Eq(field, value))
	return &next
}

func (q *fakeServerQuery) AnnotateMemberCount() repository.ServerQuery {
	next := *q
	next.filter.WithMemberCount = true
	return &next
}

func (q *fakeServerQuery) Slice(n int) repository.ServerQuery {
	next := *q
	next.filter.ListFilter = q.filter.WithLimit(n)
	return &next
}

func (q *fakeServerQuery) Filter() repository.ServerFilter {
	return q.filter
}

func (q *fakeServerQuery) Exists(ctx context.Context) (bool, error) {
	q.repo.existsCalls++
	items, err := q.Fetch(ctx, 0, 1)
	return len(items) > 0, err
}

func (q *fakeServerQuery) Count(ctx context.Context) (int, error) {
	items, err := q.Fetch(ctx, 0, -1)
	return len(items), err
}

func (q *fakeServerQuery) Fetch(ctx context.Context, offset, limit int) ([]*domain.Server, error) {
	offset, limit, ok := q.filter.Window(offset, limit)
	if !ok {
		return []*domain.Server{}, nil
	}

	matched := []*domain.Server{}
	for _, s := range q.repo.servers {
		if q.matches(s) {
			matched = append(matched, q.annotate(s))
		}
	}

	if offset >= len(matched) {
		return []*domain.Server{}, nil
	}
	matched = matched[offset:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (q *fakeServerQuery) matches(s *domain.Server) bool {
	for _, f := range q.filter.Filters {
		switch f.Field {
		case repository.FieldID:
			if s.ID != f.Value.(int64) {
				return false
			}
		case repository.FieldCategory:
			if s.CategoryName != f.Value.(string) {
				return false
			}
		case repository.FieldMember:
			if f.Value == nil || !slices.Contains(q.repo.members[s.ID], f.Value.(int64)) {
				return false
			}
		}
	}
	return true
}

func (q *fakeServerQuery) annotate(s *domain.Server) *domain.Server {
	copied := *s
	if q.filter.WithMemberCount {
		distinct := slices.Compact(slices.Sorted(slices.Values(q.repo.members[s.ID])))
		n := len(distinct)
		copied.NumMembers = &n
	}
	return &copied
}
