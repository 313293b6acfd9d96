// Package stack wraps the Pulumi automation API with the project's stack
// conventions: a file-backed local workspace and refusal to modify protected
// stacks without explicit instruction.
package stack

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/tokens"
	"github.com/pulumi/pulumi/sdk/v3/go/common/workspace"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/thunderbird/pulumi/pkg/logging"
	"github.com/thunderbird/pulumi/pkg/project"
)

// ErrStackProtected is returned when an action would modify a protected
// stack and TBPULUMI_DISABLE_PROTECTION is not set.
var ErrStackProtected = errors.New("stack is protected")

// Reference identifies a stack and where its program lives.
type Reference struct {
	Project      string
	Name         string
	IacDirectory string
	AwsRegion    string
	// ProtectedStacks which Up and Destroy refuse to touch without explicit
	// instruction.
	ProtectedStacks []string
}

func (r Reference) protected() bool {
	if !slices.Contains(r.ProtectedStacks, r.Name) {
		return false
	}
	return !project.EnvVarIsTrue(project.DisableProtectionEnvVar)
}

// Initialize creates or selects the stack, backed by local file state under
// the user's home directory.
func Initialize(ctx context.Context, fs afero.Fs, projectName, stackName, stackDirectory string) (auto.Stack, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return auto.Stack{}, errors.Wrap(err, "getting user home directory")
	}
	pulumiHomeDir := filepath.Join(homeDir, ".tbpulumi", "pulumi")
	stateDir := filepath.Join(pulumiHomeDir, "state")
	for _, dir := range []string{pulumiHomeDir, stateDir} {
		if exists, err := afero.DirExists(fs, dir); !exists || err != nil {
			if err := fs.MkdirAll(dir, 0755); err != nil {
				return auto.Stack{}, errors.Wrapf(err, "creating %s", dir)
			}
		}
	}

	proj := auto.Project(workspace.Project{
		Name:    tokens.PackageName(projectName),
		Runtime: workspace.NewProjectRuntimeInfo("go", nil),
		Backend: &workspace.ProjectBackend{
			URL: "file://" + stateDir,
		},
	})
	secretsProvider := auto.SecretsProvider("passphrase")
	envvars := auto.EnvVars(map[string]string{
		"PULUMI_CONFIG_PASSPHRASE": "",
	})
	s, err := auto.UpsertStackLocalSource(ctx, stackName, stackDirectory, proj, envvars, auto.PulumiHome(pulumiHomeDir), secretsProvider)
	if err != nil {
		return auto.Stack{}, errors.Wrapf(err, "creating or selecting stack %q", stackName)
	}
	return s, nil
}

// Preview shows the changes a deployment would make. Previews are allowed on
// protected stacks; they change nothing.
func Preview(ctx context.Context, fs afero.Fs, ref Reference) (*auto.PreviewResult, error) {
	log := logging.GetLogger(ctx).Named("pulumi.preview")

	s, err := prepare(ctx, fs, ref)
	if err != nil {
		return nil, err
	}

	result, err := s.Preview(
		ctx,
		optpreview.ProgressStreams(logging.NewLoggerWriter(log, zap.InfoLevel)),
		optpreview.Refresh(),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "previewing stack %q", ref.Name)
	}
	log.Sugar().Infof("Successfully previewed stack %s", ref.Name)
	return &result, nil
}

// Up deploys the stack.
func Up(ctx context.Context, fs afero.Fs, ref Reference) (*auto.UpResult, error) {
	log := logging.GetLogger(ctx).Named("pulumi.up")
	if ref.protected() {
		return nil, errors.Wrapf(ErrStackProtected, "refusing to update %q; export %s=True to override", ref.Name, project.DisableProtectionEnvVar)
	}

	s, err := prepare(ctx, fs, ref)
	if err != nil {
		return nil, err
	}

	result, err := s.Up(
		ctx,
		optup.ProgressStreams(logging.NewLoggerWriter(log, zap.InfoLevel)),
		optup.Refresh(),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "updating stack %q", ref.Name)
	}
	log.Sugar().Infof("Successfully deployed stack %s", ref.Name)
	return &result, nil
}

// Destroy tears the stack down and removes it from the workspace.
func Destroy(ctx context.Context, fs afero.Fs, ref Reference) error {
	log := logging.GetLogger(ctx).Named("pulumi.destroy")
	if ref.protected() {
		return errors.Wrapf(ErrStackProtected, "refusing to destroy %q; export %s=True to override", ref.Name, project.DisableProtectionEnvVar)
	}

	s, err := prepare(ctx, fs, ref)
	if err != nil {
		return err
	}

	_, err = s.Destroy(
		ctx,
		optdestroy.ProgressStreams(logging.NewLoggerWriter(log, zap.InfoLevel)),
		optdestroy.Refresh(),
	)
	if err != nil {
		return errors.Wrapf(err, "destroying stack %q", ref.Name)
	}
	log.Sugar().Infof("Successfully destroyed stack %s", ref.Name)

	if err := s.Workspace().RemoveStack(ctx, ref.Name); err != nil {
		return errors.Wrapf(err, "removing stack %q", ref.Name)
	}
	return nil
}

func prepare(ctx context.Context, fs afero.Fs, ref Reference) (auto.Stack, error) {
	s, err := Initialize(ctx, fs, ref.Project, ref.Name, ref.IacDirectory)
	if err != nil {
		return auto.Stack{}, err
	}
	if ref.AwsRegion != "" {
		if err := s.SetConfig(ctx, "aws:region", auto.ConfigValue{Value: ref.AwsRegion}); err != nil {
			return auto.Stack{}, errors.Wrap(err, "setting stack configuration")
		}
	}
	return s, nil
}
