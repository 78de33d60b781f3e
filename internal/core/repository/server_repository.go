package repository

import (
	"context"

	"github.com/martijn/serverlist/internal/api/util"
	"github.com/martijn/serverlist/internal/core/domain"
)

// Fields accepted by ServerQuery.FilterBy
const (
	FieldID       = "id"       // exact server id (int64)
	FieldCategory = "category" // exact, case-sensitive category name (string)
	FieldMember   = "member"   // member user id (int64); nil matches nothing
)

var ServerFilterFields = []string{FieldID, FieldCategory, FieldMember}

// ServerFilter is the accumulated state of a ServerQuery.
type ServerFilter struct {
	util.ListFilter
	WithMemberCount bool
}

// ServerQuery is a lazily evaluated, immutable view over the server
// collection. Chain methods return a new query and never touch the database;
// Exists, Count and Fetch execute it.
type ServerQuery interface {
	FilterBy(field string, value interface{}) ServerQuery
	AnnotateMemberCount() ServerQuery
	Slice(n int) ServerQuery

	Exists(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int, error)
	// Fetch returns up to limit rows starting at offset, in id order.
	// A negative limit returns every remaining row.
	Fetch(ctx context.Context, offset, limit int) ([]*domain.Server, error)

	Filter() ServerFilter
}

type ServerRepository interface {
	All() ServerQuery
	Create(ctx context.Context, server *domain.Server) error
	FindByID(ctx context.Context, id int64) (*domain.Server, error)
	AddMember(ctx context.Context, serverID, userID int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}
