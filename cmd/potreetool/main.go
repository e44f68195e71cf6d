// potreetool is a CLI utility for inspecting Potree 2.0 point cloud datasets.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/potree-loader/internal/config"
	"github.com/Faultbox/potree-loader/internal/dataset"
	"github.com/Faultbox/potree-loader/internal/logger"
	"github.com/Faultbox/potree-loader/pkg/pointdata"
	"github.com/Faultbox/potree-loader/pkg/potree"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(cfg, args, os.Stdout)
	case "nodes", "ls":
		err = cmdNodes(cfg, args, os.Stdout)
	case "points":
		err = cmdPoints(cfg, args, os.Stdout)
	case "stats":
		err = cmdStats(cfg, args, os.Stdout)
	case "export", "x":
		err = cmdExport(cfg, args, os.Stdout)
	case "config":
		err = cmdConfig(cfg, args, os.Stdout)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`potreetool - Potree 2.0 dataset utility

Usage:
  potreetool [global options] <command> [options]

Global options:
  --dir <path>        Dataset directory (default ".")
  --config <file>     Config file (default ./potree.yaml)
  --max-level <n>     Deepest octree level to decode
  --debug             Enable debug logging
  --log-file <file>   Also write logs to a rotating file

Commands:
  info                        Show metadata and hierarchy summary
  nodes [-n N] [-level L]     List hierarchy nodes in traversal order
  points [-n N]               Print decoded points
  stats                       Print position and intensity statistics
  export [-o file] [-color]   Write decoded points to a LAS file
  config show                 Print the effective configuration
  config save [file]          Save the effective configuration
                              (default: user config directory)

Examples:
  potreetool --dir ./lion info
  potreetool --dir ./lion nodes -level 2
  potreetool --dir ./lion --max-level 3 export -o lion.las
  potreetool --dir ./lion --max-level 3 config save`)
}

// openTree resolves the dataset files and decodes the hierarchy.
func openTree(cfg *config.Config) (*potree.Octree, dataset.Files, error) {
	files, err := dataset.Resolve(cfg.Data.Dir, dataset.Files{
		Hierarchy: cfg.Data.Hierarchy,
		Octree:    cfg.Data.Octree,
		Metadata:  cfg.Data.Metadata,
	})
	if err != nil {
		return nil, files, err
	}
	logger.Debug("dataset resolved",
		zap.String("metadata", files.Metadata),
		zap.String("hierarchy", files.Hierarchy),
		zap.String("octree", files.Octree),
	)

	tree, err := potree.LoadFiles(files.Metadata, files.Hierarchy, potree.WithLogger(logger.Named("potree")))
	if err != nil {
		return nil, files, err
	}
	return tree, files, nil
}

// collectPoints decodes all points down to the configured level.
func collectPoints(cfg *config.Config) ([]pointdata.Point, error) {
	tree, files, err := openTree(cfg)
	if err != nil {
		return nil, err
	}

	src, err := pointdata.OpenFile(files.Octree)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	reader := pointdata.NewReader(tree, src, pointdata.WithLogger(logger.Named("pointdata")))
	return reader.Collect(pointdata.CollectOptions{
		MaxLevel:    cfg.Reader.MaxLevel,
		ReuseBuffer: cfg.Reader.ReuseBuffer,
	})
}

func cmdInfo(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	tree, files, err := openTree(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Dataset:   %s\n", files.Metadata)
	if tree.Name != "" {
		fmt.Fprintf(out, "Name:      %s\n", tree.Name)
	}
	if tree.Description != "" {
		fmt.Fprintf(out, "About:     %s\n", tree.Description)
	}
	fmt.Fprintf(out, "Version:   %s\n", tree.Version)
	fmt.Fprintf(out, "Points:    %d\n", tree.TotalPoints)
	fmt.Fprintf(out, "Spacing:   %g\n", tree.Spacing)
	fmt.Fprintf(out, "Bounds:    %s\n", tree.BoundingBox)
	if tree.TightBoundingBox != tree.BoundingBox {
		fmt.Fprintf(out, "Tight:     %s\n", tree.TightBoundingBox)
	}
	if tree.Projection != "" {
		fmt.Fprintf(out, "Proj:      %s\n", tree.Projection)
	}
	fmt.Fprintf(out, "Scale:     %v\n", tree.Schema.PositionScale)
	fmt.Fprintf(out, "Offset:    %v\n", tree.Schema.PositionOffset)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Hierarchy:")
	fmt.Fprintf(out, "  first chunk  %d bytes\n", tree.Hierarchy.FirstChunkSize)
	fmt.Fprintf(out, "  step size    %d\n", tree.Hierarchy.StepSize)
	fmt.Fprintf(out, "  depth        %d\n", tree.Hierarchy.Depth)
	fmt.Fprintf(out, "  records      %d\n", len(tree.Records()))
	fmt.Fprintf(out, "  nodes        %d (%d reachable)\n", tree.Len(), tree.TraversableNodeCount())
	fmt.Fprintf(out, "  max level    %d\n", tree.MaxLevel())
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Attributes (%d bytes per point):\n", tree.Schema.Stride())
	for _, a := range tree.Schema.Attributes {
		offset, _ := tree.Schema.OffsetOf(a.Name)
		fmt.Fprintf(out, "  %-24s %-8s %3d bytes @%-3d x%d\n", a.Name, a.Type, a.Size, offset, a.NumElements)
	}
	return nil
}

func cmdNodes(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("nodes", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N nodes (0 = all)")
	level := fs.Int("level", -1, "Deepest level to list (-1 = all)")
	fs.Parse(args)

	tree, _, err := openTree(cfg)
	if err != nil {
		return err
	}

	count := 0
	for n, depth := range tree.TraverseDepth(0) {
		if *level >= 0 && n.Level > *level {
			continue
		}
		loc, _ := n.Payload()
		fmt.Fprintf(out, "%s%-*s %-6s %8d pts  [%d, %d)\n",
			strings.Repeat("  ", depth), 12-2*min(depth, 6), n.Name, n.Type, n.NumPoints, loc.Offset, loc.End())
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}
	fmt.Fprintf(out, "\nListed %d of %d nodes\n", count, tree.Len())
	return nil
}

func cmdPoints(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("points", flag.ExitOnError)
	limit := fs.Int("n", 20, "Limit output to N points (0 = all)")
	fs.Parse(args)

	points, err := collectPoints(cfg)
	if err != nil {
		return err
	}

	for i, p := range points {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Fprintf(out, "%10.4f %10.4f %10.4f  rgb(%d,%d,%d)  i=%d\n",
			p.Position.X, p.Position.Y, p.Position.Z, p.R, p.G, p.B, p.Intensity)
	}
	fmt.Fprintf(out, "\n%d points decoded (max level %d)\n", len(points), cfg.Reader.MaxLevel)
	return nil
}

func cmdStats(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)

	points, err := collectPoints(cfg)
	if err != nil {
		return err
	}

	s := pointdata.Summarize(points)
	fmt.Fprintf(out, "Points:    %d\n", s.Count)
	fmt.Fprintf(out, "Min:       %v\n", s.Min)
	fmt.Fprintf(out, "Max:       %v\n", s.Max)
	fmt.Fprintf(out, "Mean:      %v\n", s.Mean)
	fmt.Fprintf(out, "StdDev:    %v\n", s.StdDev)
	fmt.Fprintf(out, "Intensity: mean %.2f stddev %.2f\n", s.IntensityMean, s.IntensityStdDev)
	return nil
}

func cmdExport(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("o", cfg.Export.Path, "Output LAS file")
	color := fs.Bool("color", cfg.Export.Color, "Write RGB point records")
	fs.Parse(args)

	points, err := collectPoints(cfg)
	if err != nil {
		return err
	}

	if err := pointdata.WriteLAS(*output, points, *color); err != nil {
		return err
	}
	logger.Info("export complete", zap.String("path", *output), zap.Int("points", len(points)))
	fmt.Fprintf(out, "Wrote %d points to %s\n", len(points), *output)
	return nil
}

func cmdConfig(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: potreetool config show|save [file]")
	}

	switch args[0] {
	case "show":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "save":
		path := config.DefaultPath()
		var err error
		if len(args) > 1 {
			path = args[1]
			err = cfg.SaveTo(path)
		} else {
			err = cfg.Save()
		}
		if err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Saved config to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown config action %q (want show or save)", args[0])
	}
}
