package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/martijn/serverlist/internal/core/repository"
	"github.com/martijn/serverlist/internal/core/service"
	"github.com/martijn/serverlist/internal/infrastructure/sqlstore"
	"github.com/martijn/serverlist/pkg/config"
	"github.com/martijn/serverlist/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "serverlist",
	Short: "serverlist - community server directory",
	Long: `serverlist serves a filterable, paginated listing of community servers.

It provides:
- A REST endpoint filtering servers by category, membership and id
- Optional member counts per server
- OAuth2 style authentication for users and clients
- Fixture seeding for development databases`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultConfigPath+")")
}

// initServices initializes all services
func initServices(ctx context.Context) (*Services, error) {
	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}

	db, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Debug().Str("driver", cfg.DBDriver).Msg("database ready")

	// Initialize repositories
	userRepo := sqlstore.NewUserRepository(db)
	clientRepo := sqlstore.NewClientRepository(db)
	authCodeRepo := sqlstore.NewAuthCodeRepository(db)
	categoryRepo := sqlstore.NewCategoryRepository(db)
	serverRepo := sqlstore.NewServerRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, clientRepo, authCodeRepo, cfg.JWTSecretKey, cfg.JWTAlgorithm)
	serverService := service.NewServerService(serverRepo, paginationPolicy(cfg), logger)

	return &Services{
		DB:            db,
		Logger:        logger,
		UserRepo:      userRepo,
		ClientRepo:    clientRepo,
		CategoryRepo:  categoryRepo,
		ServerRepo:    serverRepo,
		AuthService:   authService,
		ServerService: serverService,
		logCloser:     logCloser,
	}, nil
}

func paginationPolicy(cfg *config.Config) service.PaginationPolicy {
	policy := service.DefaultPaginationPolicy()
	policy.DefaultPageSize = cfg.DefaultPageSize
	policy.MaxPageSize = cfg.MaxPageSize
	policy.PageSizeQueryParam = cfg.PageSizeQueryParam
	return policy
}

// Services holds all initialized services
type Services struct {
	DB            *sqlstore.DB
	Logger        zerolog.Logger
	UserRepo      repository.UserRepository
	ClientRepo    repository.ClientRepository
	CategoryRepo  repository.CategoryRepository
	ServerRepo    repository.ServerRepository
	AuthService   *service.AuthService
	ServerService *service.ServerService

	logCloser io.Closer
}

// Close closes all resources
func (s *Services) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.logCloser != nil {
		s.logCloser.Close()
	}
}
