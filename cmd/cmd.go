// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/music-exporter/internal/formatter"
	"github.com/desertthunder/music-exporter/internal/matching"
	"github.com/desertthunder/music-exporter/internal/store"
	"github.com/urfave/cli/v3"
)

// storeFlags select and locate the catalog. Shared by export and catalog commands.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "music-file",
			Aliases: []string{"f"},
			Usage:   "Path to the JSON catalog (overrides catalog.path)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: fmt.Sprintf("Catalog backend: %s (overrides catalog.store)", strings.Join(store.Backends(), ", ")),
		},
	}
}

// exportCommand fetches saved tracks and merges them into the catalog
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Fetch saved tracks from one or more platforms and merge them into the catalog",
		Flags: append(storeFlags(),
			&cli.StringSliceFlag{
				Name:     "platform",
				Aliases:  []string{"p"},
				Usage:    "Platform to export from (deezer, spotify, youtube); repeat for several",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "youtube-playlist-id",
				Usage: "YouTube playlist to read instead of liked videos",
			},
			&cli.BoolFlag{
				Name:  "remove-duplicates",
				Usage: "Drop records sharing a title and author",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "sort",
				Usage: "Sort the catalog by author, then title",
				Value: true,
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port for the OAuth callback listener (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the authorization URL in the default browser",
			},
			&cli.BoolFlag{
				Name:  "record",
				Usage: "Record the run in the SQLite history (overrides database.record_runs)",
			},
			&cli.BoolFlag{
				Name:  "prompt",
				Usage: "Ask for missing credentials instead of failing",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print every fetched page",
			},
		),
		Action: r.Export,
	}
}

// catalogCommand inspects the stored catalog
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Inspect the stored catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show catalog records as a table",
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of records to show (0 for all)",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				),
				Action: r.CatalogList,
			},
			{
				Name:  "stats",
				Usage: "Count records per author and missing fields",
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of authors to show",
						Value: 10,
					},
				),
				Action: r.CatalogStats,
			},
			{
				Name:  "export",
				Usage: "Write the catalog as CSV, Markdown, text or JSON",
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (csv, markdown, text, json)",
						Value: string(formatter.CSV),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: catalog.{ext})",
					},
				),
				Action: r.CatalogExport,
			},
			{
				Name:  "check",
				Usage: "Report likely duplicates that differ in spelling",
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "threshold",
						Usage: "Minimum similarity score (0-100)",
						Value: matching.DefaultThreshold,
					},
				),
				Action: r.CatalogCheck,
			},
		},
	}
}

// historyCommand lists recorded export runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded export runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show (0 for all)",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// platformsCommand lists the supported platforms
func platformsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "platforms",
		Usage:  "List supported platforms, their authorization and configured credentials",
		Action: r.Platforms,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:      "deezer",
				Usage:     "Save the Deezer session cookie from a request copied as cURL in the browser",
				ArgsUsage: "<curl-file|->",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user-id",
						Usage: "Numeric Deezer user id, shown in the profile URL",
					},
				},
				Action: r.SetupDeezer,
			},
		},
	}
}
