package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/pipeline"
	"github.com/matzehuels/toolrack/pkg/render"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	paramsFile string
	mountStyle string
	name       string
	output     string // base path; extensions are appended per format
	formats    string
	noCache    bool
	refresh    bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [catalog]",
		Short: "Generate a holder from a tool catalog",
		Long: `Generate a holder from a tool catalog.

The catalog (CSV or YAML) is laid out on a grid, validated, and built on the
analytic preview kernel. The plan document and any other requested outputs
are written next to the catalog unless -o gives a different base path.

Formats: json (plan document), svg (top view), dot (operation graph),
plan-svg (operation graph rendered by Graphviz).

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.paramsFile, "params", "p", "", "parameter file (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.mountStyle, "mount-style", "", "override mount_style: none, counterbore, countersink")
	cmd.Flags().StringVar(&opts.name, "name", pipeline.DefaultName, "component name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: catalog path without extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), svg, dot, plan-svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even when a cached plan exists")

	return cmd
}

// runGenerate executes the pipeline and writes one file per format.
func (c *CLI) runGenerate(ctx context.Context, catalogPath string, g generateOpts) error {
	base := outputBase(catalogPath, g.output)
	if err := errors.ValidateOutputBase(base); err != nil {
		return err
	}

	runner, err := c.newRunner(g.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Building holder...")
	spinner.Start()

	res, err := runner.Execute(ctx, pipeline.Options{
		Catalog:    catalogPath,
		ParamsFile: g.paramsFile,
		MountStyle: g.mountStyle,
		Name:       g.name,
		Formats:    parseFormats(g.formats),
		Refresh:    g.refresh,
		Logger:     c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(base, res.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Generated %s", res.Plan.Component)
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.ToolCount, res.Stats.Rows, res.Stats.Cols,
		res.Grid.PartWidth, res.Grid.PartDepth, res.CacheInfo.PlanHit)
	for _, w := range res.Warnings() {
		printWarning("%s", w.Message)
	}
	printNewline()
	printNextStep("Inspect the grid", appName+" layout "+catalogPath)

	return nil
}

// writeArtifacts writes each artifact to base plus its format's extension
// and returns the written paths in sorted order.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	paths := make([]string, 0, len(artifacts))
	for format, data := range artifacts {
		path := base + render.Extension(format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
