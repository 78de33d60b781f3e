package cli

import (
	"fmt"
	"os"

	"github.com/martijn/serverlist/internal/core/service"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixtures into the database",
	Long: `Load users, categories, servers and memberships from a YAML file.

Example:

  users:
    - username: alice
      password: correct-horse
  categories:
    - name: Gaming
  servers:
    - name: Lobby
      owner: alice
      category: Gaming
      members: [alice]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("failed to read fixtures: %w", err)
		}

		fixtures, err := service.ParseFixtures(data)
		if err != nil {
			return err
		}

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		seeder := service.NewSeedService(
			services.UserRepo,
			services.CategoryRepo,
			services.ServerRepo,
			services.AuthService,
			services.Logger,
		)

		result, err := seeder.Seed(cmd.Context(), fixtures)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		fmt.Printf("Seeded %d users, %d categories, %d servers, %d memberships\n",
			result.Users, result.Categories, result.Servers, result.Members)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "fixture file (YAML)")
	_ = seedCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(seedCmd)
}
