// Package handler implements the stakewatch REST resources.
//
// A Dispatcher reads the whole body, decodes it permissively, and routes on
// the first path segment through a Registry:
//
//   - ping: liveness, 200 for any method
//   - users: account create, read, update and delete
//   - tokens: token issue, read, extend and revoke
//   - validators: snapshot pages, count and ad hoc rebuild
//
// Resources return a Result{Status, Payload}; the Dispatcher writes it as
// JSON. Unknown segments answer 404 and methods outside POST, GET, PUT and
// DELETE answer 405, both with an empty object.
package handler
