// Package elog sets up the etfdump CLI's stderr logger. The codec package
// itself never logs — only this command-line front end does.
package elog

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("etfdump")

var stderrFormat = logging.MustStringFormatter(
	`%{color}etfdump ▶ %{level:.4s}%{color:reset} %{message}`,
)

// Setup installs a leveled stderr backend and returns the package logger.
// ETFDUMP_LOG_LEVEL overrides defaultLevel when set to one of go-logging's
// level names.
func Setup(defaultLevel logging.Level) *logging.Logger {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetFormatter(stderrFormat)

	leveled := logging.AddModuleLevel(backend)
	switch os.Getenv("ETFDUMP_LOG_LEVEL") {
	case "CRITICAL":
		leveled.SetLevel(logging.CRITICAL, "")
	case "ERROR":
		leveled.SetLevel(logging.ERROR, "")
	case "WARNING":
		leveled.SetLevel(logging.WARNING, "")
	case "NOTICE":
		leveled.SetLevel(logging.NOTICE, "")
	case "INFO":
		leveled.SetLevel(logging.INFO, "")
	case "DEBUG":
		leveled.SetLevel(logging.DEBUG, "")
	default:
		leveled.SetLevel(defaultLevel, "")
	}

	logging.SetBackend(leveled)
	return log
}

// Log returns the package logger without reconfiguring it; Setup must have
// run first for level/format to take effect.
func Log() *logging.Logger {
	return log
}
