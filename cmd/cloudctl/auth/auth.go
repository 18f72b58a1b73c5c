// Package authcmder provides the auth command for storing cloud API tokens.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/cloudctl/cmd/cloudctl/session"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
	"github.com/papercomputeco/cloudctl/pkg/credentials"
)

const authLongDesc string = `Store and inspect cloud API tokens.

Tokens are stored per profile in credentials.toml in the .cloudctl/
directory with 0600 permissions. The CLOUDCTL_API_TOKEN environment
variable overrides any stored token.

Examples:
  cloudctl auth login                       Prompt for a token
  echo $TOKEN | cloudctl auth login         Pipe a token from stdin
  cloudctl auth login --profile staging     Store a token for another profile
  cloudctl auth status                      Show which token is in use
  cloudctl auth logout                      Remove the stored token`

const authShortDesc string = "Manage cloud API tokens"

func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
	}

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runLogin(s, cmd.InOrStdin())
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runLogout(s)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API token in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := session.Load(cmd)
			if err != nil {
				return err
			}
			return runStatus(s)
		},
	}
}

func profileOf(s *session.Session) string {
	if s.Profile == "" {
		return credentials.DefaultProfile
	}
	return s.Profile
}

func runLogin(s *session.Session, in io.Reader) error {
	token, err := readToken(s, in)
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("API token cannot be empty")
	}

	mgr, err := credentials.NewManager(s.ConfigDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetToken(s.Profile, token); err != nil {
		return err
	}

	s.Printf("\n  %s Stored token for profile %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(profileOf(s)),
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)
	return nil
}

func runLogout(s *session.Session) error {
	mgr, err := credentials.NewManager(s.ConfigDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveProfile(s.Profile); err != nil {
		return err
	}

	s.Printf("\n  %s Removed token for profile %s.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(profileOf(s)))
	return nil
}

func runStatus(s *session.Session) error {
	mgr, err := credentials.NewManager(s.ConfigDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	profiles, err := mgr.ListProfiles()
	if err != nil {
		return err
	}

	token, source, err := mgr.ResolveToken(s.Profile)
	if err != nil && !errors.Is(err, credentials.ErrNoToken) {
		return err
	}

	if s.JSON {
		return s.PrintJSON(map[string]any{
			"profile":       profileOf(s),
			"authenticated": token != "",
			"source":        source,
			"profiles":      profiles,
			"api_url":       s.Config.API.URL,
		})
	}

	s.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Authentication"))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("API:    "), cliui.ValueStyle.Render(s.Config.API.URL))
	s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Profile:"), cliui.NameStyle.Render(profileOf(s)))
	if token == "" {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Token:  "), cliui.WarnStyle.Render("not configured"))
		s.Printf("\n  Use 'cloudctl auth login' to store a token.\n\n")
		return nil
	}
	s.Printf("  %s  %s %s\n",
		cliui.KeyStyle.Render("Token:  "),
		cliui.HashStyle.Render(credentials.MaskToken(token)),
		cliui.DimStyle.Render("from "+source),
	)
	if len(profiles) > 1 {
		s.Printf("  %s  %s\n", cliui.KeyStyle.Render("Stored: "), cliui.DimStyle.Render(strings.Join(profiles, ", ")))
	}
	s.Printf("\n")
	return nil
}

// readToken reads a token from in. If stdin is a terminal, it prompts with
// hidden input; otherwise it reads the first line.
func readToken(s *session.Session, in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.Printf("Enter API token for profile %s: ", profileOf(s))

		tokenBytes, err := term.ReadPassword(int(f.Fd()))
		s.Printf("\n")
		if err != nil {
			return "", fmt.Errorf("reading API token: %w", err)
		}
		return string(tokenBytes), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
