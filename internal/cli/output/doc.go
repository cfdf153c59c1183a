// Package output renders stakewatch-cli results as a table, JSON or YAML.
//
// Table rendering reflects over structs and maps. Struct fields are named
// by their json tag; a `table:"-"` tag hides a field and `table:"wide"`
// shows it only with --wide. YAML keeps the json field names and order.
package output
