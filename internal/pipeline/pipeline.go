// Package pipeline drives the libdisni build from configuration to staged artifact.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disni/libdisni-build/internal/autotools"
	"github.com/disni/libdisni-build/internal/config"
	"github.com/disni/libdisni-build/internal/fsops"
)

// Stage is a state of the build state machine. Stages run strictly in
// declaration order; the first failure moves the machine to Failed.
type Stage int

const (
	Init Stage = iota
	ProvisionBuildDir
	RunAutoprepare
	RunConfigure
	RunMake
	RunMakeInstall
	ProvisionResourceDir
	StageArtifact
	Done
	Failed
)

var stageNames = [...]string{
	Init:                 "INIT",
	ProvisionBuildDir:    "PROVISION_BUILD_DIR",
	RunAutoprepare:       "RUN_AUTOPREPARE",
	RunConfigure:         "RUN_CONFIGURE",
	RunMake:              "RUN_MAKE",
	RunMakeInstall:       "RUN_MAKE_INSTALL",
	ProvisionResourceDir: "PROVISION_RESOURCE_DIR",
	StageArtifact:        "STAGE_ARTIFACT",
	Done:                 "DONE",
	Failed:               "FAILED",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// StepError reports the stage at which the build stopped.
type StepError struct {
	Stage Stage
	Err   error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %s failed: %v", e.Stage, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Result is the outcome of a successful build.
type Result struct {
	Config   *config.Config
	Artifact *fsops.Staged
	Record   string // path of the build record
}

// Orchestrator runs the build stages in order. It is not safe for
// concurrent use.
type Orchestrator struct {
	runner autotools.Runner
	logger *slog.Logger
	state  Stage
	now    func() time.Time
}

// New returns an Orchestrator that launches commands through r.
func New(r autotools.Runner, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		runner: r,
		logger: logger,
		now:    time.Now,
	}
}

// State returns the current stage, or the terminal one after Run returns.
func (o *Orchestrator) State() Stage { return o.state }

// Run resolves the configuration from opts and builds, installs and
// stages the library. Errors are *StepError naming the failed stage.
func (o *Orchestrator) Run(ctx context.Context, opts config.Options) (*Result, error) {
	o.state = Init
	o.logger.Info("building libdisni")

	cfg, err := config.Resolve(opts)
	if err != nil {
		return nil, o.fail(err)
	}
	logger := o.logger.With("run_id", cfg.RunID)
	logger.Debug("resolved configuration",
		"jdk_home", cfg.JDKHome,
		"prefix", cfg.BuildPrefix,
		"configure_args", cfg.ExtraConfigureArgs)

	if prev, err := LoadRecord(cfg.BuildPrefix); err == nil {
		logger.Debug("previous build",
			"run_id", prev.RunID,
			"build_time", prev.BuildTime,
			"sha256", prev.Artifact.SHA256)
	}

	tools := autotools.New(o.runner, cfg.WorkDir, cfg.BuildPrefix, cfg.Environ)
	res := &Result{Config: cfg}

	steps := []struct {
		stage Stage
		run   func() error
	}{
		{ProvisionBuildDir, func() error {
			return fsops.EnsureDir(logger, cfg.BuildPrefix)
		}},
		{RunAutoprepare, func() error {
			return tools.Autoprepare(ctx, cfg.Layout.Autoprepare)
		}},
		{RunConfigure, func() error {
			return tools.Configure(ctx, cfg.JDKHome, cfg.ConfigureArgs...)
		}},
		{RunMake, func() error {
			return tools.Build(ctx, cfg.Layout.MakeArgs...)
		}},
		{RunMakeInstall, func() error {
			return tools.Install(ctx, cfg.Layout.MakeArgs...)
		}},
		{ProvisionResourceDir, func() error {
			logger.Info("copying native library")
			return fsops.EnsureDir(logger, cfg.ResourceDir())
		}},
		{StageArtifact, func() error {
			staged, err := fsops.CopyFile(logger, cfg.LibraryPath(), cfg.ResourceDir())
			if err != nil {
				return err
			}
			res.Artifact = staged
			res.Record, err = saveRecord(tools.OutputDir(), &Record{
				RunID:         cfg.RunID,
				JDKHome:       cfg.JDKHome,
				ConfigureArgs: configureArgv(cfg),
				Artifact:      *staged,
				BuildTime:     o.now(),
			})
			return err
		}},
	}

	for _, s := range steps {
		o.state = s.stage
		if err := ctx.Err(); err != nil {
			return nil, o.fail(err)
		}
		logger.Info("step", "stage", s.stage)
		if err := s.run(); err != nil {
			return nil, o.fail(err)
		}
	}

	o.state = Done
	logger.Info("libdisni staged", "path", res.Artifact.Path, "sha256", res.Artifact.SHA256)
	return res, nil
}

func (o *Orchestrator) fail(err error) error {
	stepErr := &StepError{Stage: o.state, Err: err}
	o.state = Failed
	return stepErr
}

func configureArgv(cfg *config.Config) []string {
	argv := []string{"--with-jdk=" + cfg.JDKHome, "--prefix=" + cfg.BuildPrefix}
	return append(argv, cfg.ConfigureArgs...)
}
