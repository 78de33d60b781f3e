package cli

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/service"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var serversListOpts struct {
	category       string
	qty            string
	serverID       string
	asUser         string
	mine           bool
	withNumMembers bool
	page           string
	pageSize       string
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Inspect servers",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List servers using the same filters as the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := serversListOpts

		services, err := initServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		// --as-user stands in for a signed in caller
		auth := service.Anonymous
		if opts.asUser != "" {
			user, err := services.UserRepo.FindByUsername(cmd.Context(), opts.asUser)
			if err != nil {
				return err
			}
			auth = service.AuthContext{Authenticated: true, UserID: &user.ID}
		}

		params := url.Values{}
		params.Set(service.ParamCategory, opts.category)
		params.Set(service.ParamQty, opts.qty)
		params.Set(service.ParamByServerID, opts.serverID)
		params.Set(service.ParamByUser, strconv.FormatBool(opts.mine))
		params.Set(service.ParamWithNumMembers, strconv.FormatBool(opts.withNumMembers))

		policy := services.ServerService.Pagination()
		page := service.PageRequest{Page: opts.page, PageSize: opts.pageSize}

		list, err := services.ServerService.ListServers(cmd.Context(), service.ParseFilterRequest(params), auth, page)
		if err != nil {
			return err
		}

		printServers(list.Items, opts.withNumMembers)
		if list.Page != nil {
			fmt.Printf("\npage %d of %d (%d servers, %d per page, max %d)\n",
				list.Page.Number, list.Page.NumPages, list.Page.Count, list.Page.PageSize, policy.MaxPageSize)
		}
		return nil
	},
}

func printServers(servers []*domain.Server, withNumMembers bool) {
	if len(servers) == 0 {
		fmt.Println("No servers found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "ID\tNAME\tCATEGORY\tOWNER\tCREATED AT"
	if withNumMembers {
		header += "\tMEMBERS"
	}
	fmt.Fprintln(w, header)

	for _, s := range servers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s", s.ID, s.Name, s.CategoryName, s.OwnerID, s.CreatedAt.Format(timeLayout))
		if withNumMembers && s.NumMembers != nil {
			fmt.Fprintf(w, "\t%d", *s.NumMembers)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func init() {
	flags := serversListCmd.Flags()
	flags.StringVar(&serversListOpts.category, "category", "", "exact category name")
	flags.StringVar(&serversListOpts.qty, "qty", "", "maximum number of servers")
	flags.StringVar(&serversListOpts.serverID, "id", "", "single server id (requires --as-user)")
	flags.StringVar(&serversListOpts.asUser, "as-user", "", "act as this user")
	flags.BoolVar(&serversListOpts.mine, "mine", false, "only servers the --as-user user is a member of")
	flags.BoolVar(&serversListOpts.withNumMembers, "with-num-members", false, "include member counts")
	flags.StringVar(&serversListOpts.page, "page", "", "page number or 'last'")
	flags.StringVar(&serversListOpts.pageSize, "page-size", "", "page size override")

	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd)
}
