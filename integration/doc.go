// Package integration provides a reusable wiring layer for embedding cron
// expansion into third-party Go programs.
//
// It resolves the parse policy, logger, search window and catalog database
// from configuration and hands out ready parsers and catalog stores.
//
// Configuration is explicit via Config.Set(...) / Config.Overrides.
// The embedding host owns env/config-file loading and passes resolved values in.
//
// Note: this package currently uses the process-global Viper instance.
package integration
