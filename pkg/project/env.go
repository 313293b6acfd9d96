package project

import (
	"os"
	"strings"
)

// DisableProtectionEnvVar disables resource protection on protected stacks
// when set to a truthy value.
const DisableProtectionEnvVar = "TBPULUMI_DISABLE_PROTECTION"

// EnvVarMatches reports whether the value of the named environment variable
// is one of matches. The comparison is case-insensitive. Unset variables
// match nothing.
func EnvVarMatches(name string, matches ...string) bool {
	value, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	value = strings.ToLower(value)
	for _, match := range matches {
		if value == strings.ToLower(match) {
			return true
		}
	}
	return false
}

// EnvVarIsTrue reports whether the named environment variable is set to
// something affirmative.
func EnvVarIsTrue(name string) bool {
	return EnvVarMatches(name, "1", "t", "true", "yes")
}
