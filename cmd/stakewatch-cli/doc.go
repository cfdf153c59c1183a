// Command stakewatch-cli is the operator client for stakewatch-server.
//
// It covers accounts, tokens and the validator snapshot over the REST API,
// and builds snapshot files offline from a scores database:
//
//	stakewatch-cli ping
//	stakewatch-cli user create --phone 5550001111 --first-name Ada --last-name Lovelace --password ... --tos
//	stakewatch-cli token issue --phone 5550001111 --password ... --save
//	stakewatch-cli user get --phone 5550001111
//	stakewatch-cli -o yaml validators list --page 2 --limit 20
//	stakewatch-cli snapshot build --scores-db scores.sqlite3 --out validators.json
//	stakewatch-cli shell
//
// Defaults come from ~/.stakewatch/cli.yaml, then STAKEWATCH_SERVER and
// STAKEWATCH_TOKEN, then flags.
package main
