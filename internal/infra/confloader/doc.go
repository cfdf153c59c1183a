// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader on top of koanf:
//
//   - Sources: YAML file and environment variables
//   - Type Safety: Unmarshaling into koanf-tagged structs
//   - Defaults: values already present in the target struct are kept
//   - Watch Support: fsnotify-based Watcher for files replaced at runtime
//
// Priority (highest to lowest):
//
//  1. Environment variables (STAKEWATCH_*)
//  2. Configuration file
//  3. Default values
package confloader
