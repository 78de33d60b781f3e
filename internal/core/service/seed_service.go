package service

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
	"github.com/rs/zerolog"
)

// Fixtures describes seed data. Servers refer to users and categories by name.
type Fixtures struct {
	Users      []UserFixture     `yaml:"users"`
	Categories []CategoryFixture `yaml:"categories"`
	Servers    []ServerFixture   `yaml:"servers"`
}

type UserFixture struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type CategoryFixture struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

type ServerFixture struct {
	Name        string   `yaml:"name"`
	Description *string  `yaml:"description"`
	Icon        *string  `yaml:"icon"`
	Owner       string   `yaml:"owner"`
	Category    string   `yaml:"category"`
	Members     []string `yaml:"members"`
}

// SeedResult counts the records created by a seed run
type SeedResult struct {
	Users      int
	Categories int
	Servers    int
	Members    int
}

// ParseFixtures decodes a YAML fixture document. Unknown keys are rejected.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var fixtures Fixtures
	if err := yaml.UnmarshalWithOptions(data, &fixtures, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &fixtures, nil
}

type SeedService struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	serverRepo   repository.ServerRepository
	authService  *AuthService
	logger       zerolog.Logger
}

func NewSeedService(
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	serverRepo repository.ServerRepository,
	authService *AuthService,
	logger zerolog.Logger,
) *SeedService {
	return &SeedService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		serverRepo:   serverRepo,
		authService:  authService,
		logger:       logger.With().Str("component", "seed").Logger(),
	}
}

// Seed loads fixtures. Users and categories that already exist are reused;
// servers are always created.
func (s *SeedService) Seed(ctx context.Context, fixtures *Fixtures) (*SeedResult, error) {
	result := &SeedResult{}
	users := make(map[string]int64)
	categories := make(map[string]int64)

	for _, f := range fixtures.Users {
		id, created, err := s.ensureUser(ctx, f)
		if err != nil {
			return result, err
		}
		users[f.Username] = id
		if created {
			result.Users++
		}
	}

	for _, f := range fixtures.Categories {
		id, created, err := s.ensureCategory(ctx, f)
		if err != nil {
			return result, err
		}
		categories[f.Name] = id
		if created {
			result.Categories++
		}
	}

	for _, f := range fixtures.Servers {
		ownerID, err := s.resolveUser(ctx, users, f.Owner)
		if err != nil {
			return result, fmt.Errorf("server %q: %w", f.Name, err)
		}
		categoryID, err := s.resolveCategory(ctx, categories, f.Category)
		if err != nil {
			return result, fmt.Errorf("server %q: %w", f.Name, err)
		}

		server := domain.NewServer(f.Name, ownerID, categoryID)
		server.Description = f.Description
		server.Icon = f.Icon
		if err := s.serverRepo.Create(ctx, server); err != nil {
			return result, err
		}
		result.Servers++

		for _, member := range f.Members {
			userID, err := s.resolveUser(ctx, users, member)
			if err != nil {
				return result, fmt.Errorf("server %q: %w", f.Name, err)
			}
			if err := s.serverRepo.AddMember(ctx, server.ID, userID); err != nil {
				return result, err
			}
			result.Members++
		}

		s.logger.Debug().Int64("server_id", server.ID).Str("name", server.Name).Msg("seeded server")
	}

	return result, nil
}

func (s *SeedService) ensureUser(ctx context.Context, f UserFixture) (int64, bool, error) {
	if f.Username == "" {
		return 0, false, fmt.Errorf("user fixture without username")
	}
	if existing, err := s.userRepo.FindByUsername(ctx, f.Username); err == nil {
		return existing.ID, false, nil
	}

	hashed, err := s.authService.HashPassword(f.Password)
	if err != nil {
		return 0, false, err
	}
	user := domain.NewUser(f.Username, hashed)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return 0, false, err
	}
	return user.ID, true, nil
}

func (s *SeedService) ensureCategory(ctx context.Context, f CategoryFixture) (int64, bool, error) {
	if f.Name == "" {
		return 0, false, fmt.Errorf("category fixture without name")
	}
	if existing, err := s.categoryRepo.FindByName(ctx, f.Name); err == nil {
		return existing.ID, false, nil
	}

	category := domain.NewCategory(f.Name, f.Description)
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return 0, false, err
	}
	return category.ID, true, nil
}

func (s *SeedService) resolveUser(ctx context.Context, known map[string]int64, username string) (int64, error) {
	if id, ok := known[username]; ok {
		return id, nil
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	known[username] = user.ID
	return user.ID, nil
}

func (s *SeedService) resolveCategory(ctx context.Context, known map[string]int64, name string) (int64, error) {
	if id, ok := known[name]; ok {
		return id, nil
	}
	category, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		return 0, err
	}
	known[name] = category.ID
	return category.ID, nil
}
