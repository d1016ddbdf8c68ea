package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/uber/lsp-graph/src/lspgraph/app"
	"github.com/uber/lsp-graph/src/lspgraph/handler/analysis"
	"github.com/uber/lsp-graph/src/lspgraph/handler/render"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const _version = "(to be added at release)"

func opts() fx.Option {
	return fx.Options(
		app.Module,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lsp-graph",
		Short:        "Analyze a code base through a language server",
		Version:      _version,
		SilenceUsage: true,
	}
	cmd.AddCommand(newCodeGraphCommand(), newFnUsageCommand())
	return cmd
}

// analysisFlags are shared by every analysis command.
type analysisFlags struct {
	root     string
	suffixes []string
	ignore   []string
	format   string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", ".", "directory to analyze")
	cmd.Flags().StringSliceVar(&f.suffixes, "suffix", nil, "only analyze files ending with this suffix, repeatable")
	cmd.Flags().StringSliceVar(&f.ignore, "ignore", nil, "skip files whose path contains this fragment, repeatable")
}

func (f *analysisFlags) options(server []string) analysis.Options {
	return analysis.Options{
		Root:     f.root,
		Suffixes: f.suffixes,
		Ignore:   f.ignore,
		Server:   server,
		Format:   f.format,
	}
}

func newCodeGraphCommand() *cobra.Command {
	var f analysisFlags
	cmd := &cobra.Command{
		Use:   "code-graph [flags] -- <server> [server args...]",
		Short: "Print the file reference graph in Graphviz format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd.Context(), func(ctx context.Context, h analysis.Handler) error {
				return h.CodeGraph(ctx, f.options(args), cmd.OutOrStdout())
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newFnUsageCommand() *cobra.Command {
	var f analysisFlags
	cmd := &cobra.Command{
		Use:   "fn-usage [flags] -- <server> [server args...]",
		Short: "Print how many functions transitively call each function",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd.Context(), func(ctx context.Context, h analysis.Handler) error {
				return h.FnUsage(ctx, f.options(args), cmd.OutOrStdout())
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.format, "format", render.FormatText, "report format: text or yaml")
	return cmd
}

// runAnalysis starts the application, hands its analysis handler to run and stops the application.
func runAnalysis(ctx context.Context, run func(context.Context, analysis.Handler) error) (err error) {
	var h analysis.Handler
	fxApp := fx.New(opts(), fx.Populate(&h))
	if err := fxApp.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fxApp.StopTimeout())
		defer cancel()
		err = multierr.Append(err, fxApp.Stop(stopCtx))
	}()

	return run(ctx, h)
}
