package dto

import (
	"time"

	"github.com/martijn/serverlist/internal/core/domain"
)

// ServerResponse represents one server in a listing
type ServerResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Owner       int64     `json:"owner"`
	Category    string    `json:"category"`
	Icon        *string   `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	NumMembers  *int      `json:"num_members,omitempty"`
}

// ServerListResponse is a page of servers with absolute links to its neighbours
type ServerListResponse struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []ServerResponse `json:"results"`
}

func NewServerResponse(server *domain.Server) ServerResponse {
	return ServerResponse{
		ID:          server.ID,
		Name:        server.Name,
		Description: server.Description,
		Owner:       server.OwnerID,
		Category:    server.CategoryName,
		Icon:        server.Icon,
		CreatedAt:   server.CreatedAt,
		NumMembers:  server.NumMembers,
	}
}

func NewServerResponses(servers []*domain.Server) []ServerResponse {
	items := make([]ServerResponse, 0, len(servers))
	for _, server := range servers {
		items = append(items, NewServerResponse(server))
	}
	return items
}
