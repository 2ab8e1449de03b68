package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects function identity, configuration, and resource
// bindings, then emits a single structured zerolog event summarising the
// cold-start state. One event per cold start makes it easy to see exactly
// how a function instance was configured when troubleshooting from logs.
type StartupLogger struct {
	name         string
	initDuration time.Duration

	buckets     map[string]string
	collections map[string]string
	topics      map[string]string
	secrets     map[string]string
	features    map[string]bool
	config      map[string]string
}

// NewStartupLogger creates a StartupLogger for the given function name
// (e.g. "analyze-function", "audio-extract-function").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:        name,
		buckets:     make(map[string]string),
		collections: make(map[string]string),
		topics:      make(map[string]string),
		secrets:     make(map[string]string),
		features:    make(map[string]bool),
		config:      make(map[string]string),
	}
}

// Bucket registers a Cloud Storage bucket used by this function.
func (s *StartupLogger) Bucket(label, name string) *StartupLogger {
	s.buckets[label] = name
	return s
}

// Collection registers a Firestore collection used by this function.
func (s *StartupLogger) Collection(label, name string) *StartupLogger {
	s.collections[label] = name
	return s
}

// Topic registers a Pub/Sub topic used by this function.
func (s *StartupLogger) Topic(label, name string) *StartupLogger {
	s.topics[label] = name
	return s
}

// Secret registers a Secret Manager resource loaded by this function.
// Only the resource name is logged, never the value.
func (s *StartupLogger) Secret(label, name string) *StartupLogger {
	s.secrets[label] = name
	return s
}

// Feature registers a boolean feature flag.
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long the init() function took to complete.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits a single structured INFO event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Info()

	// Function identity — auto-collected from the Cloud Functions/Cloud Run
	// runtime environment.
	fnDict := zerolog.Dict().
		Str("name", s.name).
		Str("service", os.Getenv("K_SERVICE")).
		Str("revision", os.Getenv("K_REVISION")).
		Str("target", os.Getenv("FUNCTION_TARGET")).
		Str("project", os.Getenv("GOOGLE_CLOUD_PROJECT")).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Str("logLevel", os.Getenv("LOG_LEVEL"))

	evt = evt.Dict("function", fnDict)

	// Resources — only non-empty maps are attached.
	resources := zerolog.Dict()
	hasResources := false

	if len(s.buckets) > 0 {
		resources = resources.Dict("buckets", dictFromMap(s.buckets))
		hasResources = true
	}
	if len(s.collections) > 0 {
		resources = resources.Dict("collections", dictFromMap(s.collections))
		hasResources = true
	}
	if len(s.topics) > 0 {
		resources = resources.Dict("topics", dictFromMap(s.topics))
		hasResources = true
	}
	if len(s.secrets) > 0 {
		resources = resources.Dict("secrets", dictFromMap(s.secrets))
		hasResources = true
	}

	if hasResources {
		evt = evt.Dict("resources", resources)
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Function cold start complete")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
