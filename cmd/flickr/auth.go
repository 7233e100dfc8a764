package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sternrassler/flickr-client/internal/config"
	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/oauth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCommand(a *app) *cobra.Command {
	var perm string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize this client against a Flickr account",
		Long: `Run the out-of-band OAuth flow: open the printed URL, approve access and
paste the verification code. The access token is saved to the configured
token store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.cfg.AccessToken != "" {
				return fmt.Errorf("a static access token is configured; unset %sACCESS_TOKEN to authorize", config.EnvPrefix)
			}

			c, err := a.flickrClient(ctx)
			if err != nil {
				return err
			}
			consumer := c.Consumer()

			authURL, temp, err := consumer.AuthorizationURL(ctx, perm, "")
			if err != nil {
				return authError(err)
			}
			fmt.Fprintln(a.out, "Open this URL in your browser and approve access:")
			fmt.Fprintln(a.out)
			fmt.Fprintln(a.out, "  "+authURL)
			fmt.Fprintln(a.out)
			fmt.Fprint(a.out, "Verification code: ")

			verifier, err := a.readSecret()
			if err != nil {
				return fmt.Errorf("read verification code: %w", err)
			}

			token, err := consumer.ExchangeVerifier(ctx, temp, verifier)
			if err != nil {
				return authError(err)
			}
			fmt.Fprintf(a.out, "Authorized as %s (%s)\n", token.Extra["username"], token.Extra["user_nsid"])
			return nil
		},
	}

	cmd.Flags().StringVar(&perm, "perm", oauth.PermRead, "permission to request (read, write, delete)")
	return cmd
}

func authError(err error) error {
	if errors.Is(err, oauth.ErrTokenRequest) {
		return &client.AuthError{Problem: "token_request_failed", Err: err}
	}
	return err
}

// readSecret reads one line without echo when input is a terminal.
func (a *app) readSecret() (string, error) {
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	fmt.Fprintln(a.out)
	return strings.TrimSpace(line), nil
}
