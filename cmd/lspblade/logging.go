package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/tebeka/atexit"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/tminor/lspblade/config"
)

var log = logging.MustGetLogger("lspblade")

var logFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{module} %{level:.4s} %{message}`,
)

// configureLogging sends every lspblade logger, and glsp's, to the
// configured file or to stderr. Stdout belongs to the protocol.
func configureLogging(cfg config.Log) error {
	level, err := logging.LogLevel(strings.ToUpper(cfg.Level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		atexit.Register(func() {
			file.Close()
		})
		out = file
	}

	backend := logging.NewBackendFormatter(logging.NewLogBackend(out, "", 0), logFormat)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)

	var path *string
	if cfg.File != "" {
		path = &cfg.File
	}
	commonlog.Configure(verbosity(level), path)
	return nil
}

// verbosity maps a go-logging level onto commonlog's scale, where 0 is
// errors only.
func verbosity(level logging.Level) int {
	switch level {
	case logging.DEBUG:
		return 2
	case logging.INFO, logging.NOTICE:
		return 1
	default:
		return 0
	}
}
