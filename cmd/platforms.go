package main

import (
	"context"
	"strings"

	"github.com/desertthunder/music-exporter/internal/platforms"
	"github.com/desertthunder/music-exporter/internal/ui"
	"github.com/urfave/cli/v3"
)

// Platforms lists every supported platform with its authorization style and credential status.
func (r *Runner) Platforms(ctx context.Context, cmd *cli.Command) error {
	rows := make([]ui.PlatformRow, 0, len(platforms.Kinds()))

	for _, kind := range platforms.Kinds() {
		row := ui.PlatformRow{Name: kind.String(), Auth: platforms.AuthStyle(kind)}

		missing := r.config.MissingCredentials(kind.String())
		if len(missing) == 0 {
			row.Ready = true
			row.Status = "configured"
			if client, err := platforms.New(kind, platforms.Options{
				Credentials: r.config.Credentials,
				RedirectURI: r.config.Server.RedirectURI(),
				HTTPClient:  r.httpClient,
				Logger:      r.logger,
			}); err == nil {
				row.Auth = platforms.Describe(client)
			}
		} else {
			names := make([]string, 0, len(missing))
			for _, cred := range missing {
				names = append(names, cred.Env)
			}
			row.Status = "missing " + strings.Join(names, ", ")
		}

		rows = append(rows, row)
	}

	if err := r.writePlain("%s\n", ui.PlatformTable(rows)); err != nil {
		return err
	}
	return r.writePlain("Redirect URI for OAuth2 platforms: %s\n", r.config.Server.RedirectURI())
}
