// Package config loads server settings from defaults, an optional config
// file, TASKER_ environment variables and command-line flags, then validates
// them before anything else starts.
package config
