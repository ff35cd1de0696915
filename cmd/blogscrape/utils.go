package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt parses a positive integer flag value. An empty string means the
// flag was not set.
func parseInt(name, s string) (int, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false, fmt.Errorf("invalid -%s: %s", name, s)
	}
	return n, true, nil
}

// parseDuration parses a duration flag value. An empty string means the flag
// was not set.
func parseDuration(name, s string) (time.Duration, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("invalid -%s: %s", name, s)
	}
	return d, true, nil
}
