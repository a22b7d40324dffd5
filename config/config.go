// Package config reads the vdisk tool's settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	SecureErase bool
	Debug       uint64
}

func Load() *Config {
	return &Config{
		SecureErase: getEnvBool("VDISK_SECURE_ERASE", true),
		Debug:       getEnvUint("VDISK_DEBUG", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := getEnv(key, ""); value != "" {
		if i, err := strconv.ParseUint(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		v := strings.ToLower(value)
		return v == "true" || v == "1" || v == "yes"
	}
	return defaultValue
}
