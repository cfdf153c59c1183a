// Package service provides domain services for stakewatch.
//
// Domain services contain the business rules and orchestrate operations
// on domain models over a storage.RecordStore. This package contains:
//
//   - UserService: account create/read/update/delete, token-gated
//   - TokenService: token issue/read/extend/revoke and Verify
//   - ValidatorService: paginated snapshot views, count, ad hoc rebuild
//
// Services are stateless apart from their dependencies and safe for
// concurrent use. Every failure is returned as a *domain.DomainError whose
// code carries the HTTP status.
package service
