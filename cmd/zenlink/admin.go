package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caffeinepub/zenlink-5/internal/backend"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations (admin role required)",
	}
	cmd.AddCommand(newAdminRoleCmd())
	cmd.AddCommand(newAdminRemoveMomentCmd())
	return cmd
}

func newAdminRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role <user> <admin|user|guest>",
		Short: "Assign a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := backend.ParsePrincipal(args[0])
			if err != nil {
				return err
			}
			role := backend.UserRole(args[1])
			switch role {
			case backend.RoleAdmin, backend.RoleUser, backend.RoleGuest:
			default:
				return fmt.Errorf("unknown role %q", args[1])
			}

			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			if err := s.store.AssignRole(ctx, user, role); err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", user, bold(string(role)))
			return nil
		},
	}
}

func newAdminRemoveMomentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-moment <id>",
		Short: "Remove a highlight",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uint64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid moment id %q", args[0])
			}

			s, err := newSession(nil)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, cancel := commandContext(cmd.Context())
			defer cancel()

			if err := s.store.RemoveMoment(ctx, id); err != nil {
				return err
			}
			fmt.Println(green("Highlight removed."))
			return nil
		},
	}
}
