package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/music-exporter/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the config template to --config unless a file is already there.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Fill in [credentials.*] for the platforms you use, or set MUSIC_EXPORTER_* in %s\n", shared.DefaultEnvFile)
	r.writePlain("2. Register %s as the redirect URI with Spotify and Google\n", r.config.Server.RedirectURI())
	r.writePlain("3. Run 'music-exporter export --platform spotify'\n")

	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupDeezer reads a cURL command copied from a logged-in deezer.com tab and
// stores its session cookie in the env file named by --env-file.
func (r *Runner) SetupDeezer(ctx context.Context, cmd *cli.Command) error {
	source := cmd.Args().First()
	if source == "" {
		return fmt.Errorf("%w: curl file, or - to read from stdin", shared.ErrMissingArgument)
	}

	req, err := shared.ReadCurl(source, r.input)
	if err != nil {
		return err
	}

	session, err := req.DeezerSession()
	if err != nil {
		return err
	}

	values := map[string]string{shared.EnvPrefix + "DEEZER_COOKIE": session}
	r.config.Credentials.Deezer.Cookie = session
	if userID := cmd.String("user-id"); userID != "" {
		values[shared.EnvPrefix+"DEEZER_USER_ID"] = userID
		r.config.Credentials.Deezer.UserID = userID
	}

	envPath := cmd.String("env-file")
	if err := shared.SaveEnvFile(envPath, values); err != nil {
		return err
	}
	r.logger.Info("deezer session saved", "path", envPath, "url", req.URL)

	r.writePlain("✓ Deezer session saved to %s\n", envPath)
	if missing := r.config.MissingCredentials("deezer"); len(missing) > 0 {
		r.writePlain("Set %s or pass --user-id before exporting\n", missing[0].Env)
	}
	return nil
}
