// Package project tracks every resource group a Pulumi program builds so
// that bulk actions (monitoring, policy generation) can be taken over the
// whole deployment after it has been described.
package project

import (
	"fmt"
	"os"
	"os/user"
	"slices"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/async"
	"go.uber.org/zap"
)

// DefaultProtectedStacks lists the stacks which require explicit instruction
// to modify.
var DefaultProtectedStacks = []string{"prod"}

type (
	// Project is a collection of related Pulumi resource groups upon which
	// bulk actions can be taken. One Project exists per program run. Its
	// registry is written while the program describes infrastructure and is
	// read-only once the dependency graph is being applied.
	Project struct {
		// Name of the Pulumi project.
		Name string
		// Stack is the name of the Pulumi stack.
		Stack string
		// NamePrefix is a convenience prefix ("<project>-<stack>") for naming
		// resources consistently.
		NamePrefix string
		// ProtectedStacks are stacks whose resources get delete protection.
		ProtectedStacks []string
		// CommonTags are applied to every taggable resource in the project.
		CommonTags map[string]string

		ctx       *pulumi.Context
		log       *zap.Logger
		resources map[string]any
		awsCache  async.ConcurrentMap[string, any]
	}

	Option func(*Project)
)

// WithProtectedStacks overrides DefaultProtectedStacks.
func WithProtectedStacks(stacks ...string) Option {
	return func(p *Project) {
		p.ProtectedStacks = stacks
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Project) {
		p.log = log
	}
}

// New creates the Project for the current program run.
func New(ctx *pulumi.Context, opts ...Option) *Project {
	p := &Project{
		Name:            ctx.Project(),
		Stack:           ctx.Stack(),
		ProtectedStacks: DefaultProtectedStacks,
		ctx:             ctx,
		log:             zap.NewNop(),
		resources:       make(map[string]any),
	}
	p.NamePrefix = fmt.Sprintf("%s-%s", p.Name, p.Stack)
	for _, opt := range opts {
		opt(p)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	p.CommonTags = map[string]string{
		"environment":        p.Stack,
		"project":            p.Name,
		"pulumi_last_run_by": fmt.Sprintf("%s@%s", runUser(), hostname),
		"pulumi_project":     p.Name,
		"pulumi_stack":       p.Stack,
	}
	return p
}

// runUser names the operating system user running the program. Some
// environments cannot resolve the current user, so this degrades through the
// USER variable before giving up.
func runUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// Context returns the Pulumi context the project was created with.
func (p *Project) Context() *pulumi.Context {
	return p.ctx
}

func (p *Project) Logger() *zap.Logger {
	return p.log
}

// Register records a resource group under name. Names are unique within a
// project; registering the same name twice is a caller error.
func (p *Project) Register(name string, resources map[string]any) error {
	if _, exists := p.resources[name]; exists {
		return errors.Errorf("resource group %q is already registered with this project", name)
	}
	p.resources[name] = resources
	return nil
}

// Resources returns the registry of resource groups, keyed by group name.
// The returned map must not be mutated.
func (p *Project) Resources() map[string]any {
	return p.resources
}

// Flatten returns every resource and unresolved output reachable from the
// project registry as one flat, unordered collection.
func (p *Project) Flatten() []any {
	return Flatten(p.resources)
}

// ProtectResources reports whether resources built for this project should
// carry delete protection. Protection applies on protected stacks unless
// explicitly disabled through the environment.
func (p *Project) ProtectResources() bool {
	if !slices.Contains(p.ProtectedStacks, p.Stack) {
		return false
	}
	return !EnvVarIsTrue(DisableProtectionEnvVar)
}
