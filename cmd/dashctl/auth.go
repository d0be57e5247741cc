package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/session"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

func loginCmd(a *app) *cobra.Command {
	var creds model.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing values are read from stdin, one per line
			reader := bufio.NewReader(cmd.InOrStdin())
			if creds.Username == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Username: ")
				creds.Username = readLine(reader)
			}
			if creds.Password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				creds.Password = readLine(reader)
			}

			if _, err := a.auth.Login(cmd.Context(), a.session, creds); err != nil {
				if service.Classify(err) == service.KindUnauthenticated {
					return fmt.Errorf("login rejected: %w", err)
				}
				return a.check(cmd.Context(), err)
			}

			fmt.Fprintf(out(cmd), "Logged in as %s\n", strings.TrimSpace(creds.Username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context(), a.session); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Logged out")
			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := out(cmd)
			token, err := a.session.Token()
			if err != nil {
				fmt.Fprintln(w, "Not logged in")
				return nil
			}

			fmt.Fprintln(w, "Logged in")
			if info, ok := session.Inspect(token); ok {
				if info.Username != "" {
					fmt.Fprintf(w, "User:\t%s\n", info.Username)
				} else if info.Subject != "" {
					fmt.Fprintf(w, "User:\t%s\n", info.Subject)
				}
				if info.ExpiresAt != nil {
					state := "valid"
					if info.Expired(time.Now()) {
						state = "expired"
					}
					fmt.Fprintf(w, "Expires:\t%s (%s)\n", info.ExpiresAt.In(a.loc).Format(time.RFC3339), state)
				}
			}

			ws, err := a.workspace(cmd.Context())
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			printWindow(w, ws.Window())
			return nil
		},
	}
}
