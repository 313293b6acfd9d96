package cloudwatch

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	awscloudwatch "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lb"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/monitoring"
)

// Alarms built for an application load balancer.
const (
	albFiveXX       = "alb_5xx"
	albTargetFiveXX = "target_5xx"
	albResponseTime = "response_time"

	tgUnhealthyHosts = "unhealthy_hosts"
)

// AlbAlarmGroup alarms on a single application load balancer: 5xx responses
// generated by the balancer, 5xx responses generated by its targets, and
// overall response time.
type AlbAlarmGroup struct {
	monitoring.AlarmGroup
}

func (m *Monitoring) newAlbAlarmGroup(ctx *pulumi.Context, name string, args monitoring.AlarmGroupArgs) (pulumi.Resource, error) {
	alb, ok := args.Resource.(*lb.LoadBalancer)
	if !ok {
		return nil, errors.Errorf("resource %q is not an application load balancer", name)
	}

	ag := &AlbAlarmGroup{}
	if err := monitoring.InitAlarmGroup(ctx, "tb:cloudwatch:AlbAlarmGroup", fmt.Sprintf("%s-alarms", name), ag, args); err != nil {
		return nil, err
	}

	resources := map[string]any{}

	if ag.Overrides.Enabled(albFiveXX) {
		alarm, err := awscloudwatch.NewMetricAlarm(ctx, fmt.Sprintf("%s-5xx", name), &awscloudwatch.MetricAlarmArgs{
			Name:               pulumi.String(m.alarmName(name, albFiveXX)),
			AlarmDescription:   pulumi.String(fmt.Sprintf("5xx errors generated by load balancer %s", name)),
			ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
			MetricName:         pulumi.String("HTTPCode_ELB_5XX_Count"),
			Namespace:          pulumi.String("AWS/ApplicationELB"),
			Statistic:          pulumi.String("Sum"),
			Threshold:          pulumi.Float64(ag.Overrides.Float(albFiveXX, "threshold", 10)),
			Period:             pulumi.Int(ag.Overrides.Int(albFiveXX, "period", 300)),
			EvaluationPeriods:  pulumi.Int(ag.Overrides.Int(albFiveXX, "evaluation_periods", 2)),
			TreatMissingData:   pulumi.String("notBreaching"),
			AlarmActions:       pulumi.Array{m.Topic.Arn},
			Dimensions:         pulumi.StringMap{"LoadBalancer": alb.ArnSuffix},
			Tags:               pulumi.ToStringMap(ag.Tags),
		}, pulumi.Parent(ag))
		if err != nil {
			return nil, err
		}
		resources[albFiveXX] = alarm
	}

	if ag.Overrides.Enabled(albTargetFiveXX) {
		alarm, err := awscloudwatch.NewMetricAlarm(ctx, fmt.Sprintf("%s-target-5xx", name), &awscloudwatch.MetricAlarmArgs{
			Name:               pulumi.String(m.alarmName(name, albTargetFiveXX)),
			AlarmDescription:   pulumi.String(fmt.Sprintf("5xx errors generated by the targets of load balancer %s", name)),
			ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
			MetricName:         pulumi.String("HTTPCode_Target_5XX_Count"),
			Namespace:          pulumi.String("AWS/ApplicationELB"),
			Statistic:          pulumi.String("Sum"),
			Threshold:          pulumi.Float64(ag.Overrides.Float(albTargetFiveXX, "threshold", 10)),
			Period:             pulumi.Int(ag.Overrides.Int(albTargetFiveXX, "period", 300)),
			EvaluationPeriods:  pulumi.Int(ag.Overrides.Int(albTargetFiveXX, "evaluation_periods", 2)),
			TreatMissingData:   pulumi.String("notBreaching"),
			AlarmActions:       pulumi.Array{m.Topic.Arn},
			Dimensions:         pulumi.StringMap{"LoadBalancer": alb.ArnSuffix},
			Tags:               pulumi.ToStringMap(ag.Tags),
		}, pulumi.Parent(ag))
		if err != nil {
			return nil, err
		}
		resources[albTargetFiveXX] = alarm
	}

	if ag.Overrides.Enabled(albResponseTime) {
		alarm, err := awscloudwatch.NewMetricAlarm(ctx, fmt.Sprintf("%s-response-time", name), &awscloudwatch.MetricAlarmArgs{
			Name:               pulumi.String(m.alarmName(name, albResponseTime)),
			AlarmDescription:   pulumi.String(fmt.Sprintf("Average response time of load balancer %s, in seconds", name)),
			ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
			MetricName:         pulumi.String("TargetResponseTime"),
			Namespace:          pulumi.String("AWS/ApplicationELB"),
			Statistic:          pulumi.String("Average"),
			Threshold:          pulumi.Float64(ag.Overrides.Float(albResponseTime, "threshold", 1)),
			Period:             pulumi.Int(ag.Overrides.Int(albResponseTime, "period", 300)),
			EvaluationPeriods:  pulumi.Int(ag.Overrides.Int(albResponseTime, "evaluation_periods", 2)),
			TreatMissingData:   pulumi.String("notBreaching"),
			AlarmActions:       pulumi.Array{m.Topic.Arn},
			Dimensions:         pulumi.StringMap{"LoadBalancer": alb.ArnSuffix},
			Tags:               pulumi.ToStringMap(ag.Tags),
		}, pulumi.Parent(ag))
		if err != nil {
			return nil, err
		}
		resources[albResponseTime] = alarm
	}

	return ag, ag.Finish(ctx, pulumi.Map{}, resources)
}

// AlbTargetGroupAlarmGroup alarms on the health of one target group.
type AlbTargetGroupAlarmGroup struct {
	monitoring.AlarmGroup
}

func (m *Monitoring) newAlbTargetGroupAlarmGroup(ctx *pulumi.Context, name string, args monitoring.AlarmGroupArgs) (pulumi.Resource, error) {
	tg, ok := args.Resource.(*lb.TargetGroup)
	if !ok {
		return nil, errors.Errorf("resource %q is not a target group", name)
	}

	ag := &AlbTargetGroupAlarmGroup{}
	if err := monitoring.InitAlarmGroup(ctx, "tb:cloudwatch:AlbTargetGroupAlarmGroup", fmt.Sprintf("%s-alarms", name), ag, args); err != nil {
		return nil, err
	}

	// The UnHealthyHostCount metric is keyed by both the target group and
	// its load balancer; derive the balancer dimension from the first
	// attached ARN.
	loadBalancer := tg.LoadBalancerArns.ApplyT(func(arns []string) string {
		if len(arns) == 0 {
			return ""
		}
		if _, suffix, ok := strings.Cut(arns[0], ":loadbalancer/"); ok {
			return suffix
		}
		return ""
	}).(pulumi.StringOutput)

	resources := map[string]any{}

	if ag.Overrides.Enabled(tgUnhealthyHosts) {
		alarm, err := awscloudwatch.NewMetricAlarm(ctx, fmt.Sprintf("%s-unhealthy-hosts", name), &awscloudwatch.MetricAlarmArgs{
			Name:               pulumi.String(m.alarmName(name, tgUnhealthyHosts)),
			AlarmDescription:   pulumi.String(fmt.Sprintf("Unhealthy hosts in target group %s", name)),
			ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
			MetricName:         pulumi.String("UnHealthyHostCount"),
			Namespace:          pulumi.String("AWS/ApplicationELB"),
			Statistic:          pulumi.String("Maximum"),
			Threshold:          pulumi.Float64(ag.Overrides.Float(tgUnhealthyHosts, "threshold", 1)),
			Period:             pulumi.Int(ag.Overrides.Int(tgUnhealthyHosts, "period", 60)),
			EvaluationPeriods:  pulumi.Int(ag.Overrides.Int(tgUnhealthyHosts, "evaluation_periods", 2)),
			TreatMissingData:   pulumi.String("notBreaching"),
			AlarmActions:       pulumi.Array{m.Topic.Arn},
			Dimensions: pulumi.StringMap{
				"TargetGroup":  tg.ArnSuffix,
				"LoadBalancer": loadBalancer,
			},
			Tags: pulumi.ToStringMap(ag.Tags),
		}, pulumi.Parent(ag))
		if err != nil {
			return nil, err
		}
		resources[tgUnhealthyHosts] = alarm
	}

	return ag, ag.Finish(ctx, pulumi.Map{}, resources)
}
