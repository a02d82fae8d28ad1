// Package log builds the zap loggers used throughout this codebase.
// Components receive a *zap.Logger by injection; nothing logs through a global.
//
// Important: logs are for operators debugging the tool. Prompts, diagnostics and transaction
// output are written to the command's output writer, not logged.
package log
