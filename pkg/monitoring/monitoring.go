// Package monitoring implements the post-apply pass over a project: flatten
// the registry, wait for every deferred value to resolve, then dispatch each
// resolved resource to the alarm-group factory registered for its type.
package monitoring

import (
	"github.com/pkg/errors"
	presource "github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/config"
	"github.com/thunderbird/pulumi/pkg/multierr"
	"github.com/thunderbird/pulumi/pkg/project"
	"github.com/thunderbird/pulumi/pkg/set"
	"go.uber.org/zap"
)

type (
	// TypeMap maps a provider type token (e.g.
	// "aws:lb/loadBalancer:LoadBalancer") to the factory that builds an
	// alarm group for resources of that type. Dispatch is additive: tokens
	// absent from the map are skipped, never errors.
	TypeMap map[string]AlarmGroupFactory

	// AlarmGroupFactory builds the alarm group for one matched resource.
	AlarmGroupFactory func(ctx *pulumi.Context, name string, args AlarmGroupArgs) (pulumi.Resource, error)

	// Group is the base for concrete monitoring groups. Embedders register
	// themselves as a component, create any shared resources (topics, log
	// groups), and then call Watch to start the post-apply pass.
	Group struct {
		project.Component
	}

	GroupArgs struct {
		Project *project.Project
		TypeMap TypeMap
		Config  config.MonitoringConfig
		Tags    map[string]string
	}

	WatchArgs struct {
		TypeMap TypeMap
		Config  config.MonitoringConfig
		// Resources built by the concrete group before the pass (shared
		// topics and the like); registered with the project under the
		// group's name.
		Resources map[string]any
		// Outputs to register alongside the pass result.
		Outputs pulumi.Map
	}
)

// NewGroup builds a bare monitoring group from a type map alone. Concrete
// groups that create shared resources embed Group and call Watch themselves.
func NewGroup(ctx *pulumi.Context, typ, name string, args GroupArgs, opts ...pulumi.ResourceOption) (*Group, error) {
	g := &Group{}
	err := project.InitComponent(ctx, typ, name, g, project.ComponentArgs{
		Project: args.Project,
		Tags:    args.Tags,
	}, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.Watch(ctx, WatchArgs{TypeMap: args.TypeMap, Config: args.Config}); err != nil {
		return nil, err
	}
	return g, nil
}

// Watch flattens the project registry as it stands, registers a joined wait
// across every deferred value in the flat collection, and schedules dispatch
// to run when all of them have resolved. The continuation runs exactly once,
// and only if every value resolves; a single resolution failure fails the
// run before any alarm group is created.
//
// The number of alarm groups built is registered as the "monitored" output,
// which also keeps the engine from finishing the run before dispatch does.
func (g *Group) Watch(ctx *pulumi.Context, args WatchArgs) error {
	flat := g.Project.Flatten()

	var resources []pulumi.Resource
	var outputs []any
	for _, item := range flat {
		switch v := item.(type) {
		case pulumi.Resource:
			resources = append(resources, v)
		case pulumi.Output:
			outputs = append(outputs, v)
		}
	}

	// The join covers each resource's URN plus every loose output found in
	// the registry. URNs resolve last for a resource, so a concrete URN
	// means a concrete resource.
	join := make([]any, 0, len(resources)+len(outputs))
	for _, res := range resources {
		join = append(join, res.URN())
	}
	join = append(join, outputs...)

	var monitored pulumi.Input
	if len(join) == 0 {
		n, err := g.dispatch(ctx, nil, resources, args)
		if err != nil {
			return err
		}
		monitored = pulumi.Int(n)
	} else {
		monitored = pulumi.All(join...).ApplyT(func(resolved []any) (int, error) {
			return g.dispatch(ctx, resolved, resources, args)
		})
	}

	groupOutputs := pulumi.Map{"monitored": monitored}
	for k, v := range args.Outputs {
		groupOutputs[k] = v
	}
	return g.Finish(ctx, groupOutputs, args.Resources)
}

// dispatch runs once per pass, over a fully concrete snapshot. resolved and
// resources are index-aligned for the first len(resources) entries.
func (g *Group) dispatch(ctx *pulumi.Context, resolved []any, resources []pulumi.Resource, args WatchArgs) (int, error) {
	log := g.Project.Logger().Named("monitoring")
	matched := make(set.Set[string])
	var merr multierr.Error
	built := 0

	for i, res := range resources {
		urn, ok := resolved[i].(pulumi.URN)
		if !ok {
			continue
		}
		parsed := presource.URN(urn)
		token := parsed.Type().String()
		name := parsed.Name()

		factory, ok := args.TypeMap[token]
		if !ok {
			log.Debug("no alarm group registered for resource type",
				zap.String("type", token), zap.String("resource", name))
			continue
		}
		matched.Add(name)

		if _, err := factory(ctx, name, AlarmGroupArgs{
			Project:      g.Project,
			Group:        g,
			Resource:     res,
			ResourceName: name,
			Overrides:    args.Config.Overrides(name),
			Parent:       g.Self(),
		}); err != nil {
			merr.Append(errors.Wrapf(err, "building alarm group for %q", name))
			continue
		}
		built++
	}

	// Override keys that matched nothing are inert, most often deliberately
	// (config outliving a refactor), occasionally a typo. Say so either way.
	for name := range args.Config.Alarms {
		if !matched.Contains(name) {
			log.Warn("alarm override matched no monitored resource", zap.String("resource", name))
		}
	}

	return built, merr.ErrOrNil()
}
