// Package domain defines the core domain models for stakewatch.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - User: account record keyed by a 10-character phone number
//   - Token: short-lived bearer credential bound to a phone
//   - ValidatorRecord / EpochStat: validator snapshot entries
//   - Errors: the error taxonomy shared by services and handlers
package domain
