package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/platforms"
	"github.com/desertthunder/music-exporter/internal/server"
	"github.com/desertthunder/music-exporter/internal/shared"
	"github.com/desertthunder/music-exporter/internal/store"
	"github.com/desertthunder/music-exporter/internal/tasks"
	"github.com/urfave/cli/v3"
)

// StoreOpener builds the catalog store for a loaded config.
type StoreOpener func(ctx context.Context, cfg *shared.Config) (store.Store, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	httpClient *http.Client
	codes      platforms.CodeSource
	sources    tasks.SourceFactory
	openStore  StoreOpener
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Codes and Sources replace the browser callback and the platform clients; both are nil outside tests.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	HTTPClient *http.Client
	Codes      platforms.CodeSource
	Sources    tasks.SourceFactory
	OpenStore  StoreOpener
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		httpClient: opts.HTTPClient,
		codes:      opts.Codes,
		sources:    opts.Sources,
		openStore:  opts.OpenStore,
	}
	if r.openStore == nil {
		r.openStore = func(ctx context.Context, cfg *shared.Config) (store.Store, error) {
			return store.Open(ctx, cfg, r.logger)
		}
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		exportCommand, catalogCommand, historyCommand, platformsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies the global flags: log level, env file and config file, in that order.
//
// A missing config file leaves the defaults in place so `setup config` can create it.
// The default env file may be absent; one given explicitly must exist.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := shared.ParseLogLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, level)

	if err := shared.LoadEnvFile(cmd.String("env-file"), !cmd.IsSet("env-file")); err != nil {
		return ctx, err
	}

	if err := r.loadConfig(cmd.String("config"), cmd.IsSet("config")); err != nil {
		return ctx, err
	}

	r.config.ApplyEnv(nil)
	return ctx, nil
}

func (r *Runner) loadConfig(path string, explicit bool) error {
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return shared.ConfigError("failed to read config "+path, err)
		}
		if explicit {
			r.logger.Info("config file not found, using defaults", "path", path)
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
		}
		return nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}

	r.config = config
	r.logger.Debug("config loaded", "path", path)
	return nil
}

// sourceFactory builds real platform clients that authorize through the local callback listener.
func (r *Runner) sourceFactory() tasks.SourceFactory {
	if r.sources != nil {
		return r.sources
	}

	codes := r.codes
	if codes == nil {
		codes = server.NewAuthorizer(r.config.Server, r.output, r.logger)
	}

	return func(kind platforms.Kind) (platforms.Pager, error) {
		return platforms.New(kind, platforms.Options{
			Credentials: r.config.Credentials,
			RedirectURI: r.config.Server.RedirectURI(),
			Codes:       codes,
			HTTPClient:  r.httpClient,
			Logger:      r.logger,
		})
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = shared.MarshalJSON(data, true)
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
