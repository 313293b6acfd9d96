package cloudwatch

import (
	"fmt"

	"github.com/pkg/errors"
	awscloudwatch "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudfront"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/thunderbird/pulumi/pkg/monitoring"
)

const cfDistroFourXX = "distribution_4xx"

// CloudFrontDistributionAlarmGroup alarms on the client error rate of one
// CloudFront distribution. CloudFront only emits these metrics in us-east-1,
// with a "Global" region dimension.
type CloudFrontDistributionAlarmGroup struct {
	monitoring.AlarmGroup
}

func (m *Monitoring) newCloudFrontDistributionAlarmGroup(ctx *pulumi.Context, name string, args monitoring.AlarmGroupArgs) (pulumi.Resource, error) {
	distro, ok := args.Resource.(*cloudfront.Distribution)
	if !ok {
		return nil, errors.Errorf("resource %q is not a CloudFront distribution", name)
	}

	ag := &CloudFrontDistributionAlarmGroup{}
	if err := monitoring.InitAlarmGroup(ctx, "tb:cloudwatch:CloudFrontDistributionAlarmGroup", fmt.Sprintf("%s-alarms", name), ag, args); err != nil {
		return nil, err
	}

	resources := map[string]any{}

	if ag.Overrides.Enabled(cfDistroFourXX) {
		alarm, err := awscloudwatch.NewMetricAlarm(ctx, fmt.Sprintf("%s-4xx", name), &awscloudwatch.MetricAlarmArgs{
			Name:               pulumi.String(m.alarmName(name, cfDistroFourXX)),
			AlarmDescription:   pulumi.String(fmt.Sprintf("4xx error rate of distribution %s, as a percentage of all requests", name)),
			ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
			MetricName:         pulumi.String("4xxErrorRate"),
			Namespace:          pulumi.String("AWS/CloudFront"),
			Statistic:          pulumi.String("Average"),
			Threshold:          pulumi.Float64(ag.Overrides.Float(cfDistroFourXX, "threshold", 2)),
			Period:             pulumi.Int(ag.Overrides.Int(cfDistroFourXX, "period", 300)),
			EvaluationPeriods:  pulumi.Int(ag.Overrides.Int(cfDistroFourXX, "evaluation_periods", 2)),
			TreatMissingData:   pulumi.String("notBreaching"),
			AlarmActions:       pulumi.Array{m.Topic.Arn},
			Dimensions: pulumi.StringMap{
				"DistributionId": distro.ID().ToStringOutput(),
				"Region":         pulumi.String("Global"),
			},
			Tags: pulumi.ToStringMap(ag.Tags),
		}, pulumi.Parent(ag))
		if err != nil {
			return nil, err
		}
		resources[cfDistroFourXX] = alarm
	}

	return ag, ag.Finish(ctx, pulumi.Map{}, resources)
}
