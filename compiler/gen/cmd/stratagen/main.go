// stratagen generates entity structs and schema registrations from a
// YAML entity spec.
//
//	go run github.com/syssam/strata/compiler/gen/cmd/stratagen --spec entities.yaml --out ./model
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/strata/compiler/gen"
	"github.com/syssam/strata/compiler/load"
)

type options struct {
	spec    string
	out     string
	header  string
	workers int
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "stratagen",
		Short: "Generate entity structs and registrations",
		Long: `stratagen reads a YAML entity spec and writes one Go file per entity
plus a registry file into the output directory.

Example:
  stratagen --spec entities.yaml --out ./model`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), o)
		},
	}
	cmd.Flags().StringVar(&o.spec, "spec", "entities.yaml", "entity spec file")
	cmd.Flags().StringVar(&o.out, "out", ".", "output directory")
	cmd.Flags().StringVar(&o.header, "header", gen.DefaultHeader, "header comment of generated files")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "files rendered in parallel (0 uses GOMAXPROCS)")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	spec, err := load.LoadFile(o.spec)
	if err != nil {
		return err
	}
	opts := []gen.Option{gen.WithTarget(o.out), gen.WithHeader(o.header)}
	if o.workers > 0 {
		opts = append(opts, gen.WithWorkers(o.workers))
	}
	g, err := gen.New(spec, opts...)
	if err != nil {
		return err
	}
	if err := g.Generate(ctx); err != nil {
		return err
	}
	m := g.Metrics()
	slog.Info("generated", "package", spec.Package, "files", m.FilesGenerated, "bytes", m.TotalBytes, "dir", o.out)
	return nil
}
