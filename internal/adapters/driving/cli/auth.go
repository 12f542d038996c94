package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/custodia-labs/flightdeck/internal/adapters/driving/oauth"
	"github.com/custodia-labs/flightdeck/internal/connectors/google"
)

// EnvGoogleClientSecret supplies the OAuth client secret without a prompt.
const EnvGoogleClientSecret = "FLIGHTDECK_GOOGLE_CLIENT_SECRET"

const authTimeout = 5 * time.Minute

var (
	authClientID     string
	authClientSecret string
	authPort         int
	authTokenFile    string
	authNoBrowser    bool
)

// Replaced in tests.
var (
	googleOAuthConfig = google.OAuthConfig
	openBrowser       = oauth.OpenBrowser
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to live sources",
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorise Gmail and Google Calendar",
	Long: `Runs the Google OAuth flow in the browser and writes a refreshable token
file. The token grants read access to mail and calendar and permission to
send the fallback email.

The client secret is read from --client-secret, then from
FLIGHTDECK_GOOGLE_CLIENT_SECRET, and is otherwise prompted for.`,
	Args: cobra.NoArgs,
	RunE: runAuthGoogle,
}

func init() {
	authGoogleCmd.Flags().StringVar(&authClientID, "client-id", "", "OAuth client ID (desktop app)")
	authGoogleCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "OAuth client secret")
	authGoogleCmd.Flags().IntVar(&authPort, "port", 0, "callback port (default: any free port)")
	authGoogleCmd.Flags().StringVar(&authTokenFile, "token-file", "", "where to write the token (default google.token_file)")
	authGoogleCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the URL instead of opening a browser")
	_ = authGoogleCmd.MarkFlagRequired("client-id")
	authCmd.AddCommand(authGoogleCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthGoogle(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	secret := authClientSecret
	if secret == "" {
		secret = os.Getenv(EnvGoogleClientSecret)
	}
	if secret == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Client secret: ")
		secret = readSecret()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if secret == "" {
		return errors.New("a client secret is required")
	}

	path := authTokenFile
	if path == "" {
		path = settings.Google.TokenFile
	}
	if path == "" {
		path = filepath.Join(filepath.Dir(settings.Storage.DataDir), "google-token.json")
	}

	state, err := oauth.NewState()
	if err != nil {
		return err
	}
	server := oauth.NewCallbackServer(authPort, state)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop() //nolint:errcheck

	cfg := googleOAuthConfig(authClientID, secret, server.RedirectURI())
	verifier := oauth2.GenerateVerifier()
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier))

	fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL to authorise flightdeck:\n\n  %s\n\n", authURL)
	if !authNoBrowser {
		if err := openBrowser(authURL); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open a browser: %v\n", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
	defer cancel()
	code, err := server.WaitForCode(ctx)
	if err != nil {
		return err
	}
	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := google.SaveTokenFile(path, cfg, tok); err != nil {
		return err
	}

	if settings.Google.TokenFile != path {
		if err := settingsService.Set("google.token_file", path); err != nil {
			return err
		}
	}
	cmd.Printf("%s Google token saved to %s\n", okStyle.Render("✓"), path)
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret() string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
