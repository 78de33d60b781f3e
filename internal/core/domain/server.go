package domain

import "time"

// Server is a community grouping that users join as members.
type Server struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Description  *string   `db:"description"`
	Icon         *string   `db:"icon"`
	OwnerID      int64     `db:"owner_id"`
	CategoryID   int64     `db:"category_id"`
	CategoryName string    `db:"category_name"`
	CreatedAt    time.Time `db:"created_at"`

	// NumMembers is only populated when the member count annotation was requested.
	NumMembers *int `db:"num_members"`
}

func NewServer(name string, ownerID, categoryID int64) *Server {
	return &Server{
		Name:       name,
		OwnerID:    ownerID,
		CategoryID: categoryID,
		CreatedAt:  time.Now(),
	}
}

// Category groups servers. Names are unique and matched case-sensitively.
type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func NewCategory(name string, description *string) *Category {
	return &Category{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
