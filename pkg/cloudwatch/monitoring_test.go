package cloudwatch

import (
	"sync"
	"testing"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ecs"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lb"
	presource "github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderbird/pulumi/pkg/config"
	"github.com/thunderbird/pulumi/pkg/monitoring"
	"github.com/thunderbird/pulumi/pkg/project"
)

const metricAlarmType = "aws:cloudwatch/metricAlarm:MetricAlarm"

type recordingMocks struct {
	mu      sync.Mutex
	created []pulumi.MockResourceArgs
}

func (m *recordingMocks) NewResource(args pulumi.MockResourceArgs) (string, presource.PropertyMap, error) {
	m.mu.Lock()
	m.created = append(m.created, args)
	m.mu.Unlock()
	return args.Name + "_id", args.Inputs, nil
}

func (m *recordingMocks) Call(args pulumi.MockCallArgs) (presource.PropertyMap, error) {
	return args.Args, nil
}

// ofType returns the recorded registrations matching one provider type token,
// keyed by logical name.
func (m *recordingMocks) ofType(token string) map[string]presource.PropertyMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]presource.PropertyMap{}
	for _, args := range m.created {
		if args.TypeToken == token {
			out[args.Name] = args.Inputs
		}
	}
	return out
}

type webComponent struct {
	project.Component
}

func registerAlb(t *testing.T, ctx *pulumi.Context, p *project.Project, name string) {
	t.Helper()
	comp := &webComponent{}
	require.NoError(t, project.InitComponent(ctx, "tb:test:Web", "web", comp, project.ComponentArgs{Project: p}))
	alb, err := lb.NewLoadBalancer(ctx, name, nil, pulumi.Parent(comp))
	require.NoError(t, err)
	require.NoError(t, comp.Finish(ctx, pulumi.Map{}, map[string]any{"alb": alb}))
}

func Test_MonitoringAlbDefaults(t *testing.T) {
	assert := assert.New(t)
	mocks := &recordingMocks{}

	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		p := project.New(ctx)
		registerAlb(t, ctx, p, "frontend")
		_, err := NewMonitoring(ctx, "monitoring", MonitoringArgs{Project: p})
		return err
	}, pulumi.WithMocks("proj", "test", mocks))
	require.NoError(t, err)

	topics := mocks.ofType("aws:sns/topic:Topic")
	require.Len(t, topics, 1)
	assert.Equal("proj-test-alerting", topics["monitoring-topic"]["name"].StringValue())

	alarms := mocks.ofType(metricAlarmType)
	require.Len(t, alarms, 3)
	require.Contains(t, alarms, "frontend-5xx")
	require.Contains(t, alarms, "frontend-target-5xx")
	require.Contains(t, alarms, "frontend-response-time")

	fiveXX := alarms["frontend-5xx"]
	assert.Equal("proj-test-frontend-alb-5xx", fiveXX["name"].StringValue())
	assert.Equal("HTTPCode_ELB_5XX_Count", fiveXX["metricName"].StringValue())
	assert.Equal("AWS/ApplicationELB", fiveXX["namespace"].StringValue())
	assert.Equal("Sum", fiveXX["statistic"].StringValue())
	assert.Equal(10.0, fiveXX["threshold"].NumberValue())
	assert.Equal(300.0, fiveXX["period"].NumberValue())
	assert.Equal(2.0, fiveXX["evaluationPeriods"].NumberValue())
	assert.Equal("notBreaching", fiveXX["treatMissingData"].StringValue())

	// alarms are tagged back to the resource they monitor
	tags := fiveXX["tags"].ObjectValue()
	assert.Equal("frontend", tags[presource.PropertyKey(monitoring.ResourceNameTag)].StringValue())

	respTime := alarms["frontend-response-time"]
	assert.Equal("TargetResponseTime", respTime["metricName"].StringValue())
	assert.Equal("Average", respTime["statistic"].StringValue())
	assert.Equal(1.0, respTime["threshold"].NumberValue())
}

func Test_MonitoringAlbOverrides(t *testing.T) {
	assert := assert.New(t)
	mocks := &recordingMocks{}

	cfg := config.MonitoringConfig{
		Alarms: map[string]config.AlarmOverrides{
			"frontend": {
				"alb_5xx":       {"threshold": 80, "period": 60},
				"response_time": {"enabled": false},
			},
		},
	}

	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		p := project.New(ctx)
		registerAlb(t, ctx, p, "frontend")
		_, err := NewMonitoring(ctx, "monitoring", MonitoringArgs{Project: p, Config: cfg})
		return err
	}, pulumi.WithMocks("proj", "test", mocks))
	require.NoError(t, err)

	alarms := mocks.ofType(metricAlarmType)
	// response_time is disabled; the other two still build
	require.Len(t, alarms, 2)
	assert.NotContains(alarms, "frontend-response-time")

	fiveXX := alarms["frontend-5xx"]
	assert.Equal(80.0, fiveXX["threshold"].NumberValue())
	assert.Equal(60.0, fiveXX["period"].NumberValue())

	// alarms without overrides keep their defaults
	target := alarms["frontend-target-5xx"]
	assert.Equal(10.0, target["threshold"].NumberValue())
}

func Test_MonitoringEcsService(t *testing.T) {
	assert := assert.New(t)
	mocks := &recordingMocks{}

	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		p := project.New(ctx)
		comp := &webComponent{}
		require.NoError(t, project.InitComponent(ctx, "tb:test:Api", "api", comp, project.ComponentArgs{Project: p}))
		svc, err := ecs.NewService(ctx, "backend", nil, pulumi.Parent(comp))
		require.NoError(t, err)
		require.NoError(t, comp.Finish(ctx, pulumi.Map{}, map[string]any{"service": svc}))

		_, err = NewMonitoring(ctx, "monitoring", MonitoringArgs{Project: p})
		return err
	}, pulumi.WithMocks("proj", "test", mocks))
	require.NoError(t, err)

	alarms := mocks.ofType(metricAlarmType)
	require.Len(t, alarms, 2)
	require.Contains(t, alarms, "backend-cpu")
	require.Contains(t, alarms, "backend-memory")

	cpu := alarms["backend-cpu"]
	assert.Equal("CPUUtilization", cpu["metricName"].StringValue())
	assert.Equal("AWS/ECS", cpu["namespace"].StringValue())
	assert.Equal(80.0, cpu["threshold"].NumberValue())

	mem := alarms["backend-memory"]
	assert.Equal("MemoryUtilization", mem["metricName"].StringValue())
	assert.Equal(80.0, mem["threshold"].NumberValue())
}

func Test_MonitoringTargetGroup(t *testing.T) {
	assert := assert.New(t)
	mocks := &recordingMocks{}

	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		p := project.New(ctx)
		comp := &webComponent{}
		require.NoError(t, project.InitComponent(ctx, "tb:test:Web", "web", comp, project.ComponentArgs{Project: p}))
		tg, err := lb.NewTargetGroup(ctx, "workers", nil, pulumi.Parent(comp))
		require.NoError(t, err)
		require.NoError(t, comp.Finish(ctx, pulumi.Map{}, map[string]any{"tg": tg}))

		_, err = NewMonitoring(ctx, "monitoring", MonitoringArgs{Project: p})
		return err
	}, pulumi.WithMocks("proj", "test", mocks))
	require.NoError(t, err)

	alarms := mocks.ofType(metricAlarmType)
	require.Len(t, alarms, 1)
	require.Contains(t, alarms, "workers-unhealthy-hosts")

	unhealthy := alarms["workers-unhealthy-hosts"]
	assert.Equal("UnHealthyHostCount", unhealthy["metricName"].StringValue())
	assert.Equal("Maximum", unhealthy["statistic"].StringValue())
	assert.Equal(1.0, unhealthy["threshold"].NumberValue())
	assert.Equal(60.0, unhealthy["period"].NumberValue())
}

func Test_MonitoringIgnoresUnsupportedResources(t *testing.T) {
	assert := assert.New(t)
	mocks := &recordingMocks{}

	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		p := project.New(ctx)
		comp := &webComponent{}
		require.NoError(t, project.InitComponent(ctx, "tb:test:Queue", "queue", comp, project.ComponentArgs{Project: p}))
		cluster, err := ecs.NewCluster(ctx, "jobs", nil, pulumi.Parent(comp))
		require.NoError(t, err)
		require.NoError(t, comp.Finish(ctx, pulumi.Map{}, map[string]any{"cluster": cluster}))

		_, err = NewMonitoring(ctx, "monitoring", MonitoringArgs{Project: p})
		return err
	}, pulumi.WithMocks("proj", "test", mocks))
	require.NoError(t, err)

	// nothing monitorable: the topic still exists, no alarms do
	assert.Empty(mocks.ofType(metricAlarmType))
	assert.Len(mocks.ofType("aws:sns/topic:Topic"), 1)
}
