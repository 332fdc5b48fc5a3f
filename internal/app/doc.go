// Package app wires the skill's dependencies for the entrypoints.
//
// It builds the catalog, ticker directory, Quandl client, notifier and
// recorder from config.Config and hands the assembled dispatcher to the
// webhook server, the Lambda handler and the stockctl CLI.
package app
