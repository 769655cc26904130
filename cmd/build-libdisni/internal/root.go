package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/disni/libdisni-build/internal/autotools"
	"github.com/disni/libdisni-build/internal/config"
	"github.com/disni/libdisni-build/internal/logging"
	"github.com/disni/libdisni-build/internal/pipeline"
	"github.com/disni/libdisni-build/internal/runner"
)

// newRunner is replaced in tests.
var newRunner = func(logger *slog.Logger) autotools.Runner {
	return runner.New(logger)
}

type rootFlags struct {
	logLevel string
	envFile  string
	config   string
}

func newRootCmd(logger *slog.Logger, levelVar *slog.LevelVar) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "build-libdisni [flags] [--] [configure-flags]",
		Short: "Build libdisni and stage it into the Java resources",
		Long: `build-libdisni runs autoprepare, configure, make and make install for the
libdisni native library in the current directory, installing into ./build,
then copies build/lib/libdisni.so into ../src/main/resources/lib.

JAVA_HOME must point at a JDK. An optional single argument is appended to the
configure command line. Flags this command does not know start that argument:

  build-libdisni --enable-debug
  build-libdisni --log-level debug "--enable-debug --with-spdk=/opt/spdk"`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(flags.logLevel)
			if err != nil {
				return err
			}
			levelVar.Set(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, logger, flags, args)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Set log verbosity (debug, info, warning, error)")
	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Read missing environment variables (e.g. JAVA_HOME) from a dotenv file")
	cmd.Flags().StringVar(&flags.config, "config", "", "YAML file overriding the build layout")
	return cmd
}

func runBuild(cmd *cobra.Command, logger *slog.Logger, flags rootFlags, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	opts := config.Options{
		Args:    args,
		Environ: os.Environ(),
		WorkDir: wd,
		EnvFile: flags.envFile,
		File:    flags.config,
	}

	o := pipeline.New(newRunner(logger), logger)
	res, err := o.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Artifact.Path)
	return nil
}

// Execute runs the root command with args.
func Execute(ctx context.Context, logger *slog.Logger, levelVar *slog.LevelVar, args []string) error {
	cmd := newRootCmd(logger, levelVar)
	cmd.SetArgs(configureArgsAfterDash(cmd, args))
	return cmd.ExecuteContext(ctx)
}

// configureArgsAfterDash inserts "--" before the first argument that
// looks like a flag but is not one of cmd's, so configure flags such as
// --enable-debug reach the build as a positional argument.
func configureArgsAfterDash(cmd *cobra.Command, args []string) []string {
	cmd.InitDefaultHelpFlag()
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") || arg == "-" {
			return args
		}
		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		f := lookupFlag(cmd, arg, name)
		if f == nil {
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		}
		if !hasValue && f.NoOptDefVal == "" {
			i++ // skip the flag's value
		}
	}
	return args
}

func lookupFlag(cmd *cobra.Command, arg, name string) *pflag.Flag {
	short := !strings.HasPrefix(arg, "--") && len(name) == 1
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
		if short {
			if f := fs.ShorthandLookup(name); f != nil {
				return f
			}
			continue
		}
		if f := fs.Lookup(name); f != nil {
			return f
		}
	}
	return nil
}

// ExitCode maps a build error to the process exit status: the failing
// command's own status when it exited non-zero, 130 on interruption,
// 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}
