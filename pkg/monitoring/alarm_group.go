package monitoring

import (
	"maps"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/config"
	"github.com/thunderbird/pulumi/pkg/project"
)

// ResourceNameTag is applied to every alarm group and links it back to the
// resource it monitors.
const ResourceNameTag = "tb_pulumi_resource_name"

type (
	// AlarmGroup is the base for the collection of alarms monitoring one
	// particular resource. A load balancer, say, has several metrics worth
	// alarming on; one AlarmGroup collects all of those alarms.
	AlarmGroup struct {
		project.Component

		// Resource is the matched resource this group monitors.
		Resource pulumi.Resource
		// ResourceName is the resource's logical name, as dispatch resolved
		// it from the resource's URN.
		ResourceName string
		// Overrides are the user-supplied settings for this resource's
		// alarms.
		Overrides config.AlarmOverrides
	}

	// AlarmGroupResource is implemented by any struct embedding AlarmGroup.
	AlarmGroupResource interface {
		project.ComponentResource
		alarmGroup() *AlarmGroup
	}

	// AlarmGroupArgs is what dispatch hands each factory.
	AlarmGroupArgs struct {
		Project      *project.Project
		Group        *Group
		Resource     pulumi.Resource
		ResourceName string
		Overrides    config.AlarmOverrides
		Parent       pulumi.Resource
		Tags         map[string]string
	}
)

func (ag *AlarmGroup) alarmGroup() *AlarmGroup { return ag }

// InitAlarmGroup registers res as a component and fills in its embedded
// AlarmGroup from args.
func InitAlarmGroup(ctx *pulumi.Context, typ, name string, res AlarmGroupResource, args AlarmGroupArgs, opts ...pulumi.ResourceOption) error {
	tags := make(map[string]string, len(args.Tags)+1)
	maps.Copy(tags, args.Tags)
	tags[ResourceNameTag] = args.ResourceName

	if args.Parent != nil {
		opts = append([]pulumi.ResourceOption{pulumi.Parent(args.Parent)}, opts...)
	}
	err := project.InitComponent(ctx, typ, name, res, project.ComponentArgs{
		Project: args.Project,
		Tags:    tags,
	}, opts...)
	if err != nil {
		return err
	}

	ag := res.alarmGroup()
	ag.Resource = args.Resource
	ag.ResourceName = args.ResourceName
	ag.Overrides = args.Overrides
	return nil
}
