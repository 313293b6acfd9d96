package cloudwatch

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	awscloudwatch "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ecs"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/monitoring"
)

const (
	ecsCPU    = "cpu_utilization"
	ecsMemory = "memory_utilization"
)

// EcsServiceAlarmGroup alarms on the CPU and memory consumption of one ECS
// service.
type EcsServiceAlarmGroup struct {
	monitoring.AlarmGroup
}

func (m *Monitoring) newEcsServiceAlarmGroup(ctx *pulumi.Context, name string, args monitoring.AlarmGroupArgs) (pulumi.Resource, error) {
	svc, ok := args.Resource.(*ecs.Service)
	if !ok {
		return nil, errors.Errorf("resource %q is not an ECS service", name)
	}

	ag := &EcsServiceAlarmGroup{}
	if err := monitoring.InitAlarmGroup(ctx, "tb:cloudwatch:EcsServiceAlarmGroup", fmt.Sprintf("%s-alarms", name), ag, args); err != nil {
		return nil, err
	}

	// The service's cluster is reported as an ARN; the metric dimension
	// wants the bare cluster name.
	clusterName := svc.Cluster.ApplyT(func(cluster string) string {
		if idx := strings.LastIndex(cluster, "/"); idx >= 0 {
			return cluster[idx+1:]
		}
		return cluster
	}).(pulumi.StringOutput)

	dimensions := pulumi.StringMap{
		"ClusterName": clusterName,
		"ServiceName": svc.Name,
	}

	resources := map[string]any{}

	if ag.Overrides.Enabled(ecsCPU) {
		alarm, err := awscloudwatch.NewMetricAlarm(ctx, fmt.Sprintf("%s-cpu", name), &awscloudwatch.MetricAlarmArgs{
			Name:               pulumi.String(m.alarmName(name, ecsCPU)),
			AlarmDescription:   pulumi.String(fmt.Sprintf("CPU utilization of ECS service %s, as a percentage of its reservation", name)),
			ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
			MetricName:         pulumi.String("CPUUtilization"),
			Namespace:          pulumi.String("AWS/ECS"),
			Statistic:          pulumi.String("Average"),
			Threshold:          pulumi.Float64(ag.Overrides.Float(ecsCPU, "threshold", 80)),
			Period:             pulumi.Int(ag.Overrides.Int(ecsCPU, "period", 300)),
			EvaluationPeriods:  pulumi.Int(ag.Overrides.Int(ecsCPU, "evaluation_periods", 2)),
			TreatMissingData:   pulumi.String("notBreaching"),
			AlarmActions:       pulumi.Array{m.Topic.Arn},
			Dimensions:         dimensions,
			Tags:               pulumi.ToStringMap(ag.Tags),
		}, pulumi.Parent(ag))
		if err != nil {
			return nil, err
		}
		resources[ecsCPU] = alarm
	}

	if ag.Overrides.Enabled(ecsMemory) {
		alarm, err := awscloudwatch.NewMetricAlarm(ctx, fmt.Sprintf("%s-memory", name), &awscloudwatch.MetricAlarmArgs{
			Name:               pulumi.String(m.alarmName(name, ecsMemory)),
			AlarmDescription:   pulumi.String(fmt.Sprintf("Memory utilization of ECS service %s, as a percentage of its reservation", name)),
			ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
			MetricName:         pulumi.String("MemoryUtilization"),
			Namespace:          pulumi.String("AWS/ECS"),
			Statistic:          pulumi.String("Average"),
			Threshold:          pulumi.Float64(ag.Overrides.Float(ecsMemory, "threshold", 80)),
			Period:             pulumi.Int(ag.Overrides.Int(ecsMemory, "period", 300)),
			EvaluationPeriods:  pulumi.Int(ag.Overrides.Int(ecsMemory, "evaluation_periods", 2)),
			TreatMissingData:   pulumi.String("notBreaching"),
			AlarmActions:       pulumi.Array{m.Topic.Arn},
			Dimensions:         dimensions,
			Tags:               pulumi.ToStringMap(ag.Tags),
		}, pulumi.Parent(ag))
		if err != nil {
			return nil, err
		}
		resources[ecsMemory] = alarm
	}

	return ag, ag.Finish(ctx, pulumi.Map{}, resources)
}
