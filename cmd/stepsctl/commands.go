package main

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/teamsteps/teamsteps/internal/config"
	"github.com/teamsteps/teamsteps/internal/teamstats"
	"github.com/teamsteps/teamsteps/internal/users"
	"github.com/teamsteps/teamsteps/internal/users/repository"
)

// openStore loads config and the configured backend. The returned func closes
// backend connections.
func openStore(ctx context.Context) (*users.Store, *config.Config, func(), error) {
	cfg := config.Load()
	repo, closeRepo, err := repository.Open(ctx, cfg, nil)
	if err != nil {
		return nil, nil, func() {}, err
	}
	store, err := users.New(ctx, repo)
	if err != nil {
		closeRepo()
		return nil, nil, func() {}, err
	}
	return store, cfg, closeRepo, nil
}

// withStore runs fn against a freshly opened store.
func withStore(fn func(cmd *cobra.Command, args []string, store *users.Store, cfg *config.Config) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, cfg, closeFn, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(cmd, args, store, cfg)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stepsctl",
		Short: "Administer teamsteps users from the command line",
		Long: `Administer the teamsteps user document.

The storage backend is selected the same way as for the server
(STORAGE_BACKEND, DATA_DIR, REDIS_HOST, MONGODB_URI, MINIO_ENDPOINT).

Examples:
  stepsctl users list --tokens
  stepsctl users add Al Red
  stepsctl users edit Al --team Blue
  stepsctl users set-admin Al true
  stepsctl teams`,
		SilenceUsage: true,
	}
	root.AddCommand(newUsersCmd(), newTeamsCmd())
	return root
}

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	var showTokens bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users with their team and total steps",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, store *users.Store, _ *config.Config) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if showTokens {
				fmt.Fprintln(w, "NAME\tTEAM\tADMIN\tSTEPS\tTOKEN")
				for _, u := range store.GetAllWithToken(cmd.Context()) {
					fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n", u.Name, u.Team, u.IsAdmin, u.TotalSteps, u.Token)
				}
			} else {
				fmt.Fprintln(w, "NAME\tTEAM\tADMIN\tSTEPS")
				for _, u := range store.GetAll(cmd.Context()) {
					fmt.Fprintf(w, "%s\t%s\t%t\t%d\n", u.Name, u.Team, u.IsAdmin, u.TotalSteps)
				}
			}
			return w.Flush()
		}),
	}
	listCmd.Flags().BoolVar(&showTokens, "tokens", false, "include login tokens")

	addCmd := &cobra.Command{
		Use:   "add <name> <team>",
		Short: "Add a user and print its login token",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *users.Store, cfg *config.Config) error {
			token, err := store.AddUser(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(out, "%s/?token=%s\n", cfg.Server.PublicURL, url.QueryEscape(token))
			return nil
		}),
	}

	var newName, newTeam string
	editCmd := &cobra.Command{
		Use:   "edit <previous-name>",
		Short: "Rename a user and/or move it to another team",
		Long: `Rename a user and/or move it to another team.

At least one of --name and --team is required. An omitted flag leaves
that field unchanged.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if newName == "" && newTeam == "" {
				return fmt.Errorf("at least one of --name or --team is required")
			}
			return nil
		},
		RunE: withStore(func(cmd *cobra.Command, args []string, store *users.Store, _ *config.Config) error {
			if err := store.EditUser(cmd.Context(), args[0], newName, newTeam); err != nil {
				return err
			}
			name := args[0]
			if newName != "" {
				name = newName
			}
			u, err := store.GetByName(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s team=%s\n", u.Name, u.Team)
			return nil
		}),
	}
	editCmd.Flags().StringVar(&newName, "name", "", "new user name")
	editCmd.Flags().StringVar(&newTeam, "team", "", "new team")

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a user and its step history",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *users.Store, _ *config.Config) error {
			if err := store.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}

	setAdminCmd := &cobra.Command{
		Use:   "set-admin <name> <true|false>",
		Short: "Grant or revoke admin rights",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *users.Store, _ *config.Config) error {
			isAdmin, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid admin flag %q: %w", args[1], err)
			}
			if err := store.SetAdmin(cmd.Context(), args[0], isAdmin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", args[0], isAdmin)
			return nil
		}),
	}

	usersCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, setAdminCmd)
	return usersCmd
}

func newTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "Show team totals, highest first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, store *users.Store, _ *config.Config) error {
			stats := teamstats.Compute(store.GetAll(cmd.Context()))
			sort.SliceStable(stats, func(i, j int) bool { return stats[i].Steps > stats[j].Steps })
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TEAM\tSTEPS\tMEMBERS")
			for _, t := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\n", t.Name, t.Steps, len(t.Members))
			}
			return w.Flush()
		}),
	}
}
