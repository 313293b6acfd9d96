package config

type (
	// MonitoringConfig carries override settings for alarms whose default
	// configurations are insufficient for a specific use case:
	//
	//	monitoring:
	//	  alarms:
	//	    name-of-the-resource-being-monitored:
	//	      alarm_name:
	//	        enabled: false
	//	        threshold: 80
	//
	// Every alarm honors a boolean "enabled" setting (implicitly true); the
	// remaining settings are defined by the alarm group building the alarm.
	// Keys naming resources or alarms that do not exist are inert.
	MonitoringConfig struct {
		Alarms map[string]AlarmOverrides `yaml:"alarms"`
	}

	// AlarmOverrides are the per-resource overrides: alarm name → setting
	// name → value.
	AlarmOverrides map[string]map[string]any
)

// Overrides returns the overrides configured for the named resource. The
// result is nil-safe to query when the resource has no entry.
func (c MonitoringConfig) Overrides(resourceName string) AlarmOverrides {
	return c.Alarms[resourceName]
}

// Enabled reports whether the named alarm should be built at all.
func (o AlarmOverrides) Enabled(alarm string) bool {
	if v, ok := o[alarm]["enabled"]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return true
}

// Float returns the override for (alarm, key), or def when no override of a
// usable type exists. YAML numbers arrive as int or float64 depending on
// their spelling; both are accepted.
func (o AlarmOverrides) Float(alarm, key string, def float64) float64 {
	switch n := o[alarm][key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

// Int returns the override for (alarm, key), or def when no override of a
// usable type exists.
func (o AlarmOverrides) Int(alarm, key string, def int) int {
	switch n := o[alarm][key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// String returns the override for (alarm, key), or def when no override of a
// usable type exists.
func (o AlarmOverrides) String(alarm, key, def string) string {
	if s, ok := o[alarm][key].(string); ok {
		return s
	}
	return def
}
