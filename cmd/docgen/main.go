// Command docgen generates CLI reference documentation from the frogshop
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/whimsicalfrog/frogshop/internal/commands"
	"github.com/whimsicalfrog/frogshop/internal/shop"
)

func main() {
	flags := &commands.Flags{}
	app := &shop.App{}

	root := &cli.Command{
		Name:      "frogshop",
		Usage:     "Browse the WhimsicalFrog shop from your terminal",
		UsageText: "frogshop [global options] command [command options]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error, fatal, panic)", Value: "info"},
			&cli.StringFlag{Name: "log-file", Usage: "path to log file (defaults to <data-dir>/frogshop.log)"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config file"},
			&cli.StringFlag{Name: "data-dir", Usage: "path to data directory"},
			&cli.StringFlag{Name: "api-url", Usage: "base URL of the shop API (overrides api_url in the config file)"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve /metrics and /debug/pprof on this address"},
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, app)
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	root = commands.NewUpsellCmd(flags, app).Register(root)
	root = commands.NewClickCmd(flags, app).Register(root)
	root = commands.NewNotificationsCmd(flags, app).Register(root)
	root = commands.NewConfigCmd(flags, app).Register(root)

	var b strings.Builder
	b.WriteString("# CLI reference\n")
	writeCommand(&b, root, nil)

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", filepath.Dir(outPath), err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}

func writeCommand(b *strings.Builder, cmd *cli.Command, parents []string) {
	path := append(slices.Clone(parents), cmd.Name)

	fmt.Fprintf(b, "\n%s %s\n\n", strings.Repeat("#", min(len(path)+1, 4)), strings.Join(path, " "))
	if cmd.Usage != "" {
		fmt.Fprintf(b, "%s\n\n", cmd.Usage)
	}
	if cmd.UsageText != "" {
		fmt.Fprintf(b, "```\n%s\n```\n\n", cmd.UsageText)
	}
	if cmd.Description != "" {
		fmt.Fprintf(b, "%s\n\n", cmd.Description)
	}

	if len(cmd.Flags) > 0 {
		b.WriteString("| Flag | Usage |\n|---|---|\n")
		for _, f := range cmd.Flags {
			names := make([]string, 0, len(f.Names()))
			for _, n := range f.Names() {
				if len(n) == 1 {
					names = append(names, "-"+n)
				} else {
					names = append(names, "--"+n)
				}
			}
			usage := ""
			if u, ok := f.(cli.DocGenerationFlag); ok {
				usage = u.GetUsage()
			}
			fmt.Fprintf(b, "| `%s` | %s |\n", strings.Join(names, "`, `"), usage)
		}
	}

	for _, sub := range cmd.Commands {
		writeCommand(b, sub, path)
	}
}
