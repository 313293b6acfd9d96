// Package cloudwatch builds CloudWatch alarms for the resources a project
// deploys. Monitoring discovers every supported resource in the project and
// attaches an alarm group to each; alert delivery fans out through one SNS
// topic per group.
package cloudwatch

import (
	"fmt"

	"github.com/iancoleman/strcase"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/sns"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/config"
	"github.com/thunderbird/pulumi/pkg/monitoring"
	"github.com/thunderbird/pulumi/pkg/project"
)

// Provider type tokens this monitoring group knows how to build alarms for.
const (
	TypeLoadBalancer           = "aws:lb/loadBalancer:LoadBalancer"
	TypeTargetGroup            = "aws:lb/targetGroup:TargetGroup"
	TypeCloudFrontDistribution = "aws:cloudfront/distribution:Distribution"
	TypeEcsService             = "aws:ecs/service:Service"
)

type (
	Monitoring struct {
		monitoring.Group

		// Topic receives every alarm action in the group.
		Topic *sns.Topic
	}

	MonitoringArgs struct {
		Project *project.Project
		Config  config.MonitoringConfig
		Tags    map[string]string
		// ExcludeFromProject keeps the group itself out of the registry so
		// it cannot be discovered by a later monitoring pass.
		ExcludeFromProject bool
	}
)

// NewMonitoring creates the alerting topic and starts the post-apply pass
// over everything registered with the project so far.
func NewMonitoring(ctx *pulumi.Context, name string, args MonitoringArgs, opts ...pulumi.ResourceOption) (*Monitoring, error) {
	m := &Monitoring{}
	err := project.InitComponent(ctx, "tb:cloudwatch:Monitoring", name, m, project.ComponentArgs{
		Project:            args.Project,
		Tags:               args.Tags,
		ExcludeFromProject: args.ExcludeFromProject,
	}, opts...)
	if err != nil {
		return nil, err
	}

	topic, err := sns.NewTopic(ctx, fmt.Sprintf("%s-topic", name), &sns.TopicArgs{
		Name: pulumi.String(fmt.Sprintf("%s-alerting", args.Project.NamePrefix)),
		Tags: pulumi.ToStringMap(m.Tags),
	}, pulumi.Parent(m))
	if err != nil {
		return nil, err
	}
	m.Topic = topic

	err = m.Watch(ctx, monitoring.WatchArgs{
		TypeMap: monitoring.TypeMap{
			TypeLoadBalancer:           m.newAlbAlarmGroup,
			TypeTargetGroup:            m.newAlbTargetGroupAlarmGroup,
			TypeCloudFrontDistribution: m.newCloudFrontDistributionAlarmGroup,
			TypeEcsService:             m.newEcsServiceAlarmGroup,
		},
		Config:    args.Config,
		Resources: map[string]any{"sns_topic": topic},
		Outputs:   pulumi.Map{"sns_topic_arn": topic.Arn},
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// alarmName builds the CloudWatch-visible name for one alarm, e.g.
// "myproject-prod-frontend-alb-5xx".
func (m *Monitoring) alarmName(resourceName, alarm string) string {
	return fmt.Sprintf("%s-%s-%s", m.Project.NamePrefix, resourceName, strcase.ToKebab(alarm))
}
