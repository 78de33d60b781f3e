package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/spf13/cobra"
)

var usersForce bool

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
	Long:  "Manage user accounts that can sign in and list their own servers",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if _, err := services.UserRepo.FindByUsername(cmd.Context(), username); err == nil {
			return fmt.Errorf("user already exists: %s", username)
		}

		password, err := promptNewPassword("password")
		if err != nil {
			return err
		}

		hashedPassword, err := services.AuthService.HashPassword(password)
		if err != nil {
			return err
		}

		user := domain.NewUser(username, hashedPassword)
		if err := services.UserRepo.Create(cmd.Context(), user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("User '%s' created with id %d\n", username, user.ID)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if !confirm(fmt.Sprintf("Are you sure you want to delete user '%s'?", username), usersForce) {
			fmt.Println("Cancelled")
			return nil
		}

		if err := services.UserRepo.Delete(cmd.Context(), username); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		fmt.Printf("User '%s' deleted\n", username)
		return nil
	},
}

var usersUpdatePasswordCmd = &cobra.Command{
	Use:   "update-password <username>",
	Short: "Update user password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		user, err := services.UserRepo.FindByUsername(cmd.Context(), username)
		if err != nil {
			return err
		}

		password, err := promptNewPassword("new password")
		if err != nil {
			return err
		}

		hashedPassword, err := services.AuthService.HashPassword(password)
		if err != nil {
			return err
		}

		user.Password = hashedPassword
		user.UpdatedAt = time.Now()
		if err := services.UserRepo.Update(cmd.Context(), user); err != nil {
			return err
		}

		fmt.Printf("Password updated for user '%s'\n", username)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		users, err := services.UserRepo.List(cmd.Context())
		if err != nil {
			return err
		}

		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tCREATED AT\tUPDATED AT")
		for _, user := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				user.ID,
				user.Username,
				user.CreatedAt.Format(timeLayout),
				user.UpdatedAt.Format(timeLayout),
			)
		}
		return w.Flush()
	},
}

func init() {
	usersDeleteCmd.Flags().BoolVarP(&usersForce, "force", "f", false, "skip confirmation")

	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersUpdatePasswordCmd)
	usersCmd.AddCommand(usersListCmd)
}
