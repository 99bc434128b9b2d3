package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/subx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin stores a bearer token. The token is given with --token or taken from the Authorization header
// of a cURL command copied from the browser's DevTools.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	token := strings.TrimSpace(cmd.String("token"))
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	provided := 0
	for _, v := range []string{token, curlCmd, curlFile} {
		if v != "" {
			provided++
		}
	}
	if provided == 0 {
		return fmt.Errorf("%w: one of --token, --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if provided > 1 {
		return fmt.Errorf("%w: --token, --curl and --curl-file are mutually exclusive", shared.ErrInvalidArgument)
	}

	if token == "" {
		var curlHeaders *shared.CurlHeaders
		var err error

		if curlFile != "" {
			curlHeaders, err = shared.ParseCurlFile(curlFile)
			if err != nil {
				return fmt.Errorf("failed to parse cURL file: %w", err)
			}
			r.logger.Info("parsed cURL from file", "file", curlFile)
		} else {
			curlHeaders, err = shared.ParseCurlCommand(curlCmd)
			if err != nil {
				return fmt.Errorf("failed to parse cURL command: %w", err)
			}
			r.logger.Info("parsed cURL command")
		}

		if token, err = curlHeaders.BearerToken(); err != nil {
			return err
		}
	}

	if err := r.session.Login(ctx, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	r.logger.Info("token stored")
	return r.writePlain("✓ Logged in\n")
}

// AuthLogout forgets the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.Logout(ctx); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports whether a token is stored and whether the account service accepts it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	if !r.session.LoggedIn(ctx) {
		r.writePlain("Authentication: ✗ No token stored\n")
		return r.writePlain("Run 'subx auth login --token <token>' to log in\n")
	}

	r.writePlain("Token: ✓ Stored\n")

	profile, err := r.users.FetchProfile(ctx)
	switch {
	case err == nil:
		return r.writePlain("Authentication: ✓ Authenticated as %s (%s)\n", profile.Name, profile.Email)
	case errors.Is(err, shared.ErrAuth):
		return r.writePlain("Authentication: ✗ Token rejected by server\n")
	default:
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
}
