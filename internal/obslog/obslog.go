// Package obslog wraps zerolog the way the pack's own services initialize
// it: a console writer in development, JSON in production, level set from
// config, with caller info attached. Call sites replace the teacher's
// bracket-tagged log.Printf("[ORCH] ...") lines with structured fields
// instead, so agent id, decision step, and cost stay queryable.
package obslog

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// #region init

// Init configures the global zerolog logger. env == "development" uses a
// human-readable console writer; anything else emits structured JSON.
func Init(env, levelName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
	}

	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// #endregion init

// #region helpers

// Agent returns a logger pre-scoped to one agent id, used at every loop
// coordinator call site instead of a "[LOOP] agent=..." prefix string.
func Agent(agentID string) zerolog.Logger {
	return log.With().Str("agentId", agentID).Logger()
}

// #endregion helpers
