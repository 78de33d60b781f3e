package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/martijn/serverlist/internal/api/util"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
)

const (
	serverColumns = `s.id, s.name, s.description, s.icon, s.owner_id, s.category_id, c.name AS category_name, s.created_at`
	serverFrom    = ` FROM server s JOIN category c ON c.id = s.category_id WHERE 1=1`

	memberCountColumn = `(SELECT COUNT(DISTINCT sm.user_id) FROM server_member sm WHERE sm.server_id = s.id) AS num_members`
	memberClause      = `s.id IN (SELECT sm.server_id FROM server_member sm WHERE sm.user_id = ?)`

	serverDefaultOrder = "s.id ASC"
)

var serverFilterColumns = map[string]string{
	repository.FieldID:       "s.id",
	repository.FieldCategory: "c.name",
}

type serverRepository struct {
	db *DB
}

func NewServerRepository(db *DB) repository.ServerRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) All() repository.ServerQuery {
	return &serverQuery{db: r.db}
}

func (r *serverRepository) Create(ctx context.Context, server *domain.Server) error {
	query := `
		INSERT INTO server (name, description, icon, owner_id, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		server.Name,
		NullString(server.Description),
		NullString(server.Icon),
		server.OwnerID,
		server.CategoryID,
		server.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get server id: %w", err)
	}
	server.ID = id
	return nil
}

func (r *serverRepository) FindByID(ctx context.Context, id int64) (*domain.Server, error) {
	servers, err := r.All().FilterBy(repository.FieldID, id).Fetch(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("server not found: %d", id)
	}
	return servers[0], nil
}

func (r *serverRepository) AddMember(ctx context.Context, serverID, userID int64) error {
	query := `INSERT INTO server_member (server_id, user_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, serverID, userID); err != nil {
		return fmt.Errorf("failed to add member %d to server %d: %w", userID, serverID, err)
	}
	return nil
}

// serverQuery is immutable: every chain method returns a modified copy.
type serverQuery struct {
	db     *DB
	filter repository.ServerFilter
	err    error
}

func (q *serverQuery) FilterBy(field string, value interface{}) repository.ServerQuery {
	next := *q
	if next.err == nil && q.filter.Limit != nil {
		next.err = errors.New("cannot filter a query once a slice has been taken")
	}
	next.filter.ListFilter = q.filter.WithFilter(util.Eq(field, value))
	return &next
}

func (q *serverQuery) AnnotateMemberCount() repository.ServerQuery {
	next := *q
	next.filter.WithMemberCount = true
	return &next
}

func (q *serverQuery) Slice(n int) repository.ServerQuery {
	next := *q
	next.filter.ListFilter = q.filter.WithLimit(n)
	return &next
}

func (q *serverQuery) Filter() repository.ServerFilter {
	return q.filter
}

func (q *serverQuery) where() (string, []interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if err := util.ValidateFilterFields(q.filter.Filters, repository.ServerFilterFields); err != nil {
		return "", nil, err
	}

	query := serverFrom
	args := []interface{}{}

	var columnFilters []util.QueryFilter
	for _, f := range q.filter.Filters {
		if f.Field != repository.FieldMember {
			columnFilters = append(columnFilters, f)
			continue
		}
		// A caller without a user identity is a member of nothing
		if f.Value == nil {
			query += " AND 1 = 0"
			continue
		}
		query += " AND " + memberClause
		args = append(args, f.Value)
	}

	query, args = ApplyFilters(query, args, columnFilters, serverFilterColumns)
	return query, args, nil
}

func (q *serverQuery) Exists(ctx context.Context) (bool, error) {
	if _, _, ok := q.filter.Window(0, 1); !ok {
		return false, nil
	}

	where, args, err := q.where()
	if err != nil {
		return false, err
	}

	var one int
	err = q.db.QueryRowContext(ctx, "SELECT 1"+where+" LIMIT 1", args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check servers: %w", err)
	}
	return true, nil
}

func (q *serverQuery) Count(ctx context.Context) (int, error) {
	where, args, err := q.where()
	if err != nil {
		return 0, err
	}

	var count int
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count servers: %w", err)
	}

	if q.filter.Limit != nil && *q.filter.Limit < count {
		count = *q.filter.Limit
	}
	return count, nil
}

func (q *serverQuery) Fetch(ctx context.Context, offset, limit int) ([]*domain.Server, error) {
	offset, limit, ok := q.filter.Window(offset, limit)
	if !ok {
		return []*domain.Server{}, nil
	}

	where, args, err := q.where()
	if err != nil {
		return nil, err
	}

	columns := serverColumns
	if q.filter.WithMemberCount {
		columns += ", " + memberCountColumn
	}

	query := ApplyOrdering("SELECT "+columns+where, q.filter.Order, serverDefaultOrder)
	query, args = ApplyWindow(query, args, offset, limit)

	servers := []*domain.Server{}
	if err := q.db.SelectContext(ctx, &servers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}
