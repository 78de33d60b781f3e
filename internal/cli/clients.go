package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/spf13/cobra"
)

var (
	clientsForce  bool
	clientsScopes []string
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage OAuth clients",
	Long:  "Manage client credentials for machine access to the server listing",
}

var clientsAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		// The plain secret is only ever shown here
		secret := uuid.New().String()
		hashedSecret, err := services.AuthService.HashPassword(secret)
		if err != nil {
			return err
		}

		client := domain.NewClient(label, hashedSecret, clientsScopes)
		if err := services.ClientRepo.Create(cmd.Context(), client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Println("Client created successfully")
		fmt.Printf("Client ID: %s\n", client.ID)
		fmt.Printf("Client Secret: %s\n", secret)
		fmt.Printf("Scopes: %s\n", strings.Join(client.Scopes, " "))
		fmt.Println("\nIMPORTANT: Save the client secret now. It will not be shown again!")

		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <client-id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID := args[0]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if !confirm(fmt.Sprintf("Are you sure you want to delete client '%s'?", clientID), clientsForce) {
			fmt.Println("Cancelled")
			return nil
		}

		if err := services.ClientRepo.Delete(cmd.Context(), clientID); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		fmt.Printf("Client '%s' deleted\n", clientID)
		return nil
	},
}

var clientsUpdateCmd = &cobra.Command{
	Use:   "update <client-id> <new-label>",
	Short: "Update client label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, newLabel := args[0], args[1]

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		client, err := services.ClientRepo.FindByID(cmd.Context(), clientID)
		if err != nil {
			return err
		}

		client.Label = newLabel
		client.UpdatedAt = time.Now()
		if cmd.Flags().Changed("scope") {
			client.Scopes = clientsScopes
		}
		if err := services.ClientRepo.Update(cmd.Context(), client); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Printf("Client '%s' updated\n", clientID)
		return nil
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		clients, err := services.ClientRepo.List(cmd.Context())
		if err != nil {
			return err
		}

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CLIENT ID\tLABEL\tSCOPES\tCREATED AT")
		for _, client := range clients {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				client.ID,
				client.Label,
				strings.Join(client.Scopes, " "),
				client.CreatedAt.Format(timeLayout),
			)
		}
		return w.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{clientsAddCmd, clientsUpdateCmd} {
		c.Flags().StringSliceVar(&clientsScopes, "scope", []string{domain.ScopeServersRead}, "scopes granted to the client")
	}
	clientsDeleteCmd.Flags().BoolVarP(&clientsForce, "force", "f", false, "skip confirmation")

	rootCmd.AddCommand(clientsCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)
	clientsCmd.AddCommand(clientsUpdateCmd)
	clientsCmd.AddCommand(clientsListCmd)
}
