package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Start a session (no password; addresses containing \"manager\" get the manager role)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.sessions.Login(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := rt.saveCurrent(s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", s.Email, s.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.current(cmd.Context())
		if errors.Is(err, session.ErrNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return rt.saveCurrent(nil)
		}
		if err != nil {
			return err
		}
		if err := rt.sessions.Logout(cmd.Context(), s); err != nil {
			return err
		}
		if err := rt.saveCurrent(nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s.\n", s.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a user account without logging in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		u, err := rt.sessions.Register(cmd.Context(), args[0], name, session.Role(role))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s> as %s.\n", u.Name, u.Email, u.Role)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.current(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:     %s\n", s.Name)
		fmt.Fprintf(out, "Email:    %s\n", s.Email)
		fmt.Fprintf(out, "Role:     %s\n", s.Role)
		fmt.Fprintf(out, "Since:    %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Session:  %s\n", s.ID)
		return nil
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Display name (defaults to the email's local part)")
	registerCmd.Flags().String("role", "", "employee or manager (defaults to the email rule)")
}
