package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plcopy/internal/server"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/desertthunder/plcopy/internal/ui"
	"github.com/urfave/cli/v3"
)

var openBrowser = shared.OpenBrowser

// Auth signs in with Google in the browser and stores the resulting access and refresh tokens in the config file.
//
// Starts a loopback server for the redirect, so the OAuth client must list [shared.AuthConfig.RedirectURL].
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	yt := r.config.Credentials.YouTube
	if !yt.HasClient() {
		return fmt.Errorf("%w: credentials.youtube.client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	path := r.configPath
	if path == "" {
		path = cmd.String("config")
	}

	conf := services.OAuthConfig(yt, "")
	state := shared.GenerateID()
	handler := server.NewOAuthHandler(conf, state)
	callback := server.NewCallbackServer(handler, shared.WithLogger(r.logger, "component", "oauth"))
	if err := callback.Listen(r.config.Auth.Addr()); err != nil {
		return err
	}
	conf.RedirectURL = callback.CallbackURL()

	authURL := services.AuthCodeURL(conf, state)
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for YouTube authorization...\n")
		if err := openBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
			r.writePlain("%s\n", ui.Warning("Could not open browser automatically."))
			r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	timeout := cmd.Duration("timeout")
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	token, err := callback.Wait(ctx, timeout)
	if err != nil {
		return err
	}

	r.config.Credentials.YouTube.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		r.config.Credentials.YouTube.RefreshToken = token.RefreshToken
	} else {
		r.logger.Warn("no refresh token issued, the access token will expire")
	}

	if err := shared.SaveConfig(path, r.config); err != nil {
		return err
	}
	r.configPath = path
	r.service = nil

	r.writePlain("%s\n", ui.Success("✓ Authorization successful"))
	r.writePlain("✓ Tokens saved to %s\n", path)
	return nil
}
