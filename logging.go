package main

import (
	"io"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/tebeka/atexit"
)

var logFormat = logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} [%{module}] %{message}`)

// configureLogging sends all logs to stderr, or to path when given, so that
// stdout stays free for the protocol.
func configureLogging(verbose int, path string) error {
	var writer io.Writer = os.Stderr
	if path != "" {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "open log %s", path)
		}
		atexit.Register(func() {
			file.Sync()
			file.Close()
		})
		writer = file
	}

	backend := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(writer, "", 0), logFormat))
	backend.SetLevel(verbosityLevel(verbose), "")
	logging.SetBackend(backend)
	return nil
}

func verbosityLevel(verbose int) logging.Level {
	switch {
	case verbose <= 0:
		return logging.WARNING
	case verbose == 1:
		return logging.NOTICE
	case verbose == 2:
		return logging.INFO
	default:
		return logging.DEBUG
	}
}
