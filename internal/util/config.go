package util

import "github.com/spf13/viper"

// GetForcePlan returns whether the plan command should ignore a cached
// inventory and force a fresh scan before planning.
// It reads the "force" configuration key; no command registers a
// --force flag for it.
func GetForcePlan() bool {
	return viper.GetBool("force")
}
