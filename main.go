package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/spendguard/spendguard/internal/analyze"
	"github.com/spendguard/spendguard/internal/chat"
	"github.com/spendguard/spendguard/internal/db"
	"github.com/spendguard/spendguard/internal/scan"
	"github.com/spendguard/spendguard/internal/serve"
	"github.com/spendguard/spendguard/internal/watch"
	"github.com/spendguard/spendguard/pkg/help"
)

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.yaml",
			Usage: "path to YAML config file",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "sqlite database path (default: next to the binary)",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "only log errors",
		},
	}

	app := &cli.App{
		Name:  "spendguard",
		Usage: "Analyze the pages you shop on and keep your budget honest",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Extract, classify, and evaluate a single page",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "page URL to analyze",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "read HTML from a local file instead of fetching",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "json",
						Usage: "output format: json or yaml",
					},
					&cli.BoolFlag{
						Name:  "no-save",
						Usage: "skip persisting the snapshot",
					},
				}, commonFlags...),
				Action: analyze.AnalyzeAction,
			},
			{
				Name:  "scan",
				Usage: "Analyze a batch of URLs concurrently and summarize",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "urls",
						Usage:    "comma-separated URLs to analyze",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 4,
						Usage: "number of concurrent workers",
					},
					&cli.BoolFlag{
						Name:  "no-save",
						Usage: "skip persisting snapshots",
					},
				}, commonFlags...),
				Action: scan.ScanAction,
			},
			{
				Name:  "watch",
				Usage: "Poll a page and re-analyze it whenever it changes",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "page URL to watch",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "poll interval (e.g. 30s)",
					},
				}, commonFlags...),
				Action: watch.WatchAction,
			},
			{
				Name:  "serve",
				Usage: "Run the local HTTP API",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "OpenAI model for the chat endpoint",
					},
				}, commonFlags...),
				Action: serve.ServeAction,
			},
			{
				Name:      "chat",
				Usage:     "Talk to the assistant about the pages you've captured",
				ArgsUsage: "[question]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "conversation",
						Usage: "resume an existing conversation by ID",
					},
					&cli.BoolFlag{
						Name:  "no-context",
						Usage: "answer without the latest page snapshot",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "OpenAI model to use",
					},
				}, commonFlags...),
				Action: chat.ChatAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print a machine-readable quick start guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:  "history",
				Usage: "Browse stored conversations",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List conversations, newest first",
						Flags:  commonFlags,
						Action: db.ConversationsAction,
					},
					{
						Name:      "show",
						Usage:     "Print a conversation transcript (latest if no ID)",
						ArgsUsage: "[conversation-id]",
						Flags:     commonFlags,
						Action:    db.ConversationAction,
					},
					{
						Name:      "delete",
						Usage:     "Delete a conversation",
						ArgsUsage: "<conversation-id>",
						Flags:     commonFlags,
						Action:    db.DeleteConversationAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
