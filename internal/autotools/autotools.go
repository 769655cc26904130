// Package autotools wraps the autoprepare/configure/make/make-install workflow.
package autotools

import (
	"context"

	"github.com/disni/libdisni-build/internal/runner"
)

// Runner executes a single command to completion.
type Runner interface {
	Run(ctx context.Context, c runner.Command) error
}

// AutoTools drives an in-tree Autotools build.
type AutoTools struct {
	r       Runner
	workDir string
	prefix  string
	env     []string
}

// New returns an AutoTools that runs every command in workDir with env
// and installs into prefix.
func New(r Runner, workDir, prefix string, env []string) *AutoTools {
	return &AutoTools{
		r:       r,
		workDir: workDir,
		prefix:  prefix,
		env:     env,
	}
}

// Autoprepare runs the bootstrap script that generates ./configure.
func (a *AutoTools) Autoprepare(ctx context.Context, script string) error {
	return a.run(ctx, script, nil)
}

// Configure runs ./configure. --with-jdk and --prefix come first;
// extra flags are appended verbatim.
func (a *AutoTools) Configure(ctx context.Context, jdkHome string, args ...string) error {
	flags := make([]string, 0, 2+len(args))
	flags = append(flags, "--with-jdk="+jdkHome, "--prefix="+a.prefix)
	return a.run(ctx, "./configure", append(flags, args...))
}

// Build runs "make" with optional extra arguments.
func (a *AutoTools) Build(ctx context.Context, args ...string) error {
	return a.run(ctx, "make", args)
}

// Install runs "make install" with optional extra arguments appended.
func (a *AutoTools) Install(ctx context.Context, args ...string) error {
	return a.run(ctx, "make", append([]string{"install"}, args...))
}

// OutputDir returns the install prefix.
func (a *AutoTools) OutputDir() string { return a.prefix }

func (a *AutoTools) run(ctx context.Context, name string, args []string) error {
	return a.r.Run(ctx, runner.Command{
		Name: name,
		Args: args,
		Dir:  a.workDir,
		Env:  a.env,
	})
}
