package project

import (
	"maps"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"go.uber.org/zap"
)

type (
	// Component is the base for pattern components. It handles the common
	// elements of a resource group: naming, tagging, protection, and
	// registration with the owning Project. Implementations embed Component,
	// call InitComponent on themselves during construction, and call Finish
	// once all member resources exist.
	Component struct {
		pulumi.ResourceState

		// ComponentName identifies this resource group. It doubles as the
		// group's key in the project registry.
		ComponentName string
		// Project owns this component.
		Project *Project
		// Tags are the project's common tags merged with any extras supplied
		// at construction.
		Tags map[string]string

		self      pulumi.ComponentResource
		exclude   bool
		resources map[string]any
	}

	// ComponentResource is implemented by any struct embedding Component.
	ComponentResource interface {
		pulumi.ComponentResource
		base() *Component
	}

	ComponentArgs struct {
		Project *Project
		// Tags are merged over the project's common tags.
		Tags map[string]string
		// ExcludeFromProject suppresses registration with the project
		// registry. The component still exists and deploys; it is just
		// invisible to bulk actions such as monitoring.
		ExcludeFromProject bool
	}
)

func (c *Component) base() *Component { return c }

// Self returns the registered component resource, for use as a parent of
// member resources.
func (c *Component) Self() pulumi.ComponentResource { return c.self }

// InitComponent registers res with the Pulumi engine and fills in its
// embedded Component. typ is the Pulumi type token of the component, e.g.
// "tb:cloudwatch:Monitoring".
func InitComponent(ctx *pulumi.Context, typ, name string, res ComponentResource, args ComponentArgs, opts ...pulumi.ResourceOption) error {
	if args.Project == nil {
		return errors.Errorf("component %q has no project", name)
	}
	p := args.Project

	protect := p.ProtectResources()
	if protect {
		p.log.Info("resource protection is enabled; export TBPULUMI_DISABLE_PROTECTION=True to disable",
			zap.String("component", name))
	}

	allOpts := append([]pulumi.ResourceOption{pulumi.Protect(protect)}, opts...)
	if err := ctx.RegisterComponentResource(typ, name, res, allOpts...); err != nil {
		return errors.Wrapf(err, "registering component %q", name)
	}

	c := res.base()
	c.ComponentName = name
	c.Project = p
	c.self = res
	c.exclude = args.ExcludeFromProject
	c.Tags = make(map[string]string, len(p.CommonTags)+len(args.Tags))
	maps.Copy(c.Tags, p.CommonTags)
	maps.Copy(c.Tags, args.Tags)
	return nil
}

// Finish registers outputs with the Pulumi engine and the member resources
// with the project registry. resources may nest maps, slices, further
// components, and raw outputs arbitrarily; the project's flattener descends
// into all of them.
func (c *Component) Finish(ctx *pulumi.Context, outputs pulumi.Map, resources map[string]any) error {
	c.resources = resources
	if !c.exclude {
		if err := c.Project.Register(c.ComponentName, resources); err != nil {
			return err
		}
	}
	return ctx.RegisterResourceOutputs(c.self, outputs)
}

// Resources returns the member resources recorded by Finish.
func (c *Component) Resources() map[string]any {
	return c.resources
}
