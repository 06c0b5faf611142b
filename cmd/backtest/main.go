package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	dataFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    "Path to the engine config YAML file",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "strategy",
			Aliases:  []string{"s"},
			Usage:    "Path to the strategy YAML file",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Market data: a folder of CSV files, a CSV file or a parquet file",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "results",
			Aliases: []string{"r"},
			Usage:   "Folder the results are written to",
			Value:   "results",
		},
		&cli.StringFlag{
			Name:  "score-csv",
			Usage: "Precomputed `datetime,pred_value` file for the external_score_threshold policy",
		},
		&cli.StringFlag{
			Name:  "onnx-model",
			Usage: "ONNX model scoring bars for the external_score_threshold policy",
		},
		&cli.StringFlag{
			Name:  "onnx-library",
			Usage: "Path to the onnxruntime shared library",
		},
		&cli.IntFlag{
			Name:  "onnx-features",
			Usage: "Number of features the ONNX model expects",
			Value: 8,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "info",
		},
	}

	return &cli.Command{
		Name:  "backtest",
		Usage: "Run signal policies over historical bars",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run one strategy over a data feed",
				Flags:  dataFlags,
				Action: runAction,
			},
			{
				Name:  "optimize",
				Usage: "Grid search the strategy parameters and rerun the best combination",
				Flags: append(dataFlags, &cli.IntFlag{
					Name:    "workers",
					Aliases: []string{"w"},
					Usage:   "Combinations run in parallel (0 uses every CPU)",
				}),
				Action: optimizeAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the engine config or of a policy's parameters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "policy",
						Aliases: []string{"p"},
						Usage:   "Policy kind; empty prints the engine config schema",
					},
				},
				Action: schemaAction,
			},
			{
				Name:   "version",
				Usage:  "Print the engine version",
				Action: versionAction,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
