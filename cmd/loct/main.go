package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/loctree/loctree/internal/logx"
	"github.com/loctree/loctree/internal/query"
	"github.com/loctree/loctree/internal/scan"
	"github.com/loctree/loctree/internal/version"

	"github.com/urfave/cli/v2"
)

var Version = version.Version

func main() {
	app := &cli.App{
		Name:                   "loct",
		Usage:                  "dependency-graph health analyzer for JS/TS/Python repos",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root to analyze (defaults to cwd, walked up to the nearest .git)",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				os.Setenv("LOCTREE_DEBUG", "1")
				logx.SetOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "walk the project, build the dependency graph, and write a snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "include-runtime",
						Usage: "suppress dead-export suppression from the runtime-API registry",
					},
					&cli.BoolFlag{
						Name:  "full",
						Usage: "force a full rescan, ignoring any incremental cache",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "print the scan result summary as JSON",
					},
				},
				Action: scanCommand,
			},
			{
				Name:      "query",
				Aliases:   []string{"q"},
				Usage:     "run a jq-like filter over the most recent (or a named) snapshot",
				ArgsUsage: "<filter>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "scan-id",
						Usage: "snapshot scan ID to query (defaults to the latest)",
					},
					&cli.StringSliceFlag{
						Name:  "arg",
						Usage: "bind a $name=value variable for the filter, e.g. --arg threshold=0.8",
					},
				},
				Action: queryCommand,
			},
			{
				Name:  "findings",
				Usage: "print findings.json for the most recent (or a named) snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "scan-id",
						Usage: "snapshot scan ID to read (defaults to the latest)",
					},
					&cli.StringFlag{
						Name:  "severity",
						Usage: "filter to a minimum severity: low, medium, high",
					},
				},
				Action: findingsCommand,
			},
		},
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "loct: %v\n", err)
		os.Exit(1)
	}
}

func scanCommand(c *cli.Context) error {
	opts := scan.Options{
		Root:           c.String("root"),
		IncludeRuntime: c.Bool("include-runtime"),
		FullRescan:     c.Bool("full"),
	}

	result, err := scan.Run(opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if c.Bool("json") {
		return json.NewEncoder(os.Stdout).Encode(result.Agent)
	}

	fmt.Printf("scan %s complete (state=%s)\n", result.ScanID, result.State)
	fmt.Printf("files=%d health_score=%d dead_high=%d cycles_breaking=%d twins=%d lint_high=%d\n",
		len(result.Snapshot.Files),
		result.Agent.Summary.HealthScore,
		result.Agent.Summary.Counts.DeadHigh,
		result.Agent.Summary.Counts.CyclesBreaking,
		result.Agent.Summary.Counts.Twins,
		result.Agent.Summary.Counts.LintHigh,
	)
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: loct query <filter>")
	}
	filterExpr := strings.Join(c.Args().Slice(), " ")

	vars := map[string]interface{}{}
	for _, kv := range c.StringSlice("arg") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--arg must be name=value, got %q", kv)
		}
		vars[name] = value
	}

	result, err := query.Run(c.String("root"), c.String("scan-id"), filterExpr, vars)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		return err
	}
	os.Exit(query.ExitStatus(result))
	return nil
}

func findingsCommand(c *cli.Context) error {
	filterExpr := ".findings"
	if sev := c.String("severity"); sev != "" {
		switch sev {
		case "low":
			// every finding is at least low severity
		case "medium":
			filterExpr = `.findings | select(.severity == "medium" or .severity == "high")`
		default:
			filterExpr = fmt.Sprintf(`.findings | select(.severity == "%s")`, sev)
		}
	}

	result, err := query.Run(c.String("root"), c.String("scan-id"), filterExpr, nil)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(result)
}
