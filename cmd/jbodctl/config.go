package main

import "github.com/spf13/viper"

// getConfigString retrieves a string config value with proper precedence:
// flag > environment variable (JBODCTL_*) > config file > default.
func getConfigString(key, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// getConfigInt retrieves an int config value with the same precedence.
func getConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

func getConfigStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}
