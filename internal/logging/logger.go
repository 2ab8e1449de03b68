package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// LOG_LEVEL controls the log level: debug, info, warn, error (default: info).
//
// Output is a single JSON line per event on stderr. Field names are remapped
// to the Cloud Logging structured-payload conventions so severity and message
// are extracted without any agent configuration.
func Init() {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	zerolog.LevelFieldName = "severity"
	zerolog.LevelFieldMarshalFunc = cloudSeverity
	zerolog.MessageFieldName = "message"
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z07:00"

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// cloudSeverity maps zerolog levels to Cloud Logging severity names.
func cloudSeverity(l zerolog.Level) string {
	switch l {
	case zerolog.DebugLevel:
		return "DEBUG"
	case zerolog.InfoLevel:
		return "INFO"
	case zerolog.WarnLevel:
		return "WARNING"
	case zerolog.ErrorLevel:
		return "ERROR"
	case zerolog.FatalLevel:
		return "CRITICAL"
	default:
		return "DEFAULT"
	}
}
