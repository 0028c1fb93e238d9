package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/frc4121/vvpipeline/internal/component"
	"github.com/frc4121/vvpipeline/internal/component/broadcast"
	"github.com/frc4121/vvpipeline/internal/graph"
	"github.com/frc4121/vvpipeline/internal/rlog"
	"github.com/frc4121/vvpipeline/internal/rtconfig"
	"github.com/frc4121/vvpipeline/internal/runner"
	"github.com/frc4121/vvpipeline/internal/spawner"
	"github.com/frc4121/vvpipeline/internal/value"
	pkgerrors "github.com/frc4121/vvpipeline/pkg/errors"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var seed []int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Builds and runs the sample broadcast/check_contains pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rtconfig.Default()
			if flags.configPath != "" {
				loaded, err := rtconfig.Load(flags.configPath)
				if err != nil {
					var formatErr *rtconfig.FormatError
					if errors.As(err, &formatErr) {
						return withExitCode(1, err)
					}
					return withExitCode(2, err)
				}
				cfg = loaded
			}
			if flags.verbose {
				cfg.LogLevel = "debug"
			}

			log := rlog.New(cmd.OutOrStderr(), cfg.LogLevel)

			if len(seed) == 0 {
				seed = []int{1, 2, 3}
			}

			resolver, rn, err := buildSampleGraph(log, cmd.OutOrStdout())
			if err != nil {
				return withExitCode(3, err)
			}

			broadcastID, ok := resolver.ByName("broadcast")
			if !ok {
				return withExitCode(3, fmt.Errorf("sample graph missing broadcast component"))
			}

			ctx := context.Background()
			sp, wait := spawner.NewScoped(ctx, func(recovered any, stack []byte) {
				log.Error(pkgerrors.NewPanicError("pipeline-runtime", recovered), "unexpected panic outside component invocation")
			})

			stopSweep := rn.StartResidueSweeper(ctx, cfg.ResidueSweepHorizon)
			defer stopSweep()

			if err := func() (err error) {
				defer func() {
					if rec := recover(); rec != nil {
						err = withExitCode(101, pkgerrors.NewPanicError("pipeline-runtime", rec))
					}
				}()
				return withExitCode(3, rn.Run(ctx, broadcastID, runner.SeedPrimary(value.Of(seed)), sp))
			}(); err != nil {
				return err
			}
			wait()

			if err := rn.AssertClean(); err != nil {
				log.Warn("residue after drain", map[string]any{"error": err.Error()})
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&seed, "seed", nil, "integers to seed the sample pipeline with")
	return cmd
}

// buildSampleGraph wires the S1/S2-style fan-out/fan-in sample used
// throughout the demo: a broadcast component feeding both a print sink
// (fan-out) and a check_contains join (fan-in).
func buildSampleGraph(log *rlog.Logger, w io.Writer) (*graph.NameResolver, *runner.PipelineRunner, error) {
	g := graph.New()

	bc, err := g.AddNamedComponent(broadcast.Of[int](), "broadcast")
	if err != nil {
		return nil, nil, err
	}
	printID, err := g.AddNamedComponent(newPrintComponent(w), "print")
	if err != nil {
		return nil, nil, err
	}
	checkID, err := g.AddNamedComponent(newCheckContainsComponent(), "check_contains")
	if err != nil {
		return nil, nil, err
	}
	reportID, err := g.AddNamedComponent(newPrintComponent(w), "report")
	if err != nil {
		return nil, nil, err
	}

	if err := g.AddDependency(
		graph.Endpoint{Component: bc, Channel: broadcast.ElemChannel},
		graph.Endpoint{Component: printID, Channel: component.PrimaryChannel},
	); err != nil {
		return nil, nil, err
	}
	if err := g.AddDependency(
		graph.Endpoint{Component: bc, Channel: component.PrimaryChannel},
		graph.Endpoint{Component: checkID, Channel: "vec"},
	); err != nil {
		return nil, nil, err
	}
	if err := g.AddDependency(
		graph.Endpoint{Component: bc, Channel: broadcast.ElemChannel},
		graph.Endpoint{Component: checkID, Channel: "elem"},
	); err != nil {
		return nil, nil, err
	}
	if err := g.AddDependency(
		graph.Endpoint{Component: checkID, Channel: component.PrimaryChannel},
		graph.Endpoint{Component: reportID, Channel: component.PrimaryChannel},
	); err != nil {
		return nil, nil, err
	}

	return g.Compile(graph.WithLogger(log))
}
