package telemetry

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Level is the severity of a log message. Levels are ordered by increasing
// severity: Debug < Info < Notice < Warning < Error < Critical.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelCritical
)

// Levels lists all levels in severity order.
var Levels = []Level{
	LevelDebug,
	LevelInfo,
	LevelNotice,
	LevelWarning,
	LevelError,
	LevelCritical,
}

// String returns the canonical lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelNotice:
		return "notice"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level. Unknown names are an error.
func ParseLevel(name string) (Level, error) {
	switch name {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "notice":
		return LevelNotice, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", name)
	}
}

// zerologLevel maps a facade level onto the closest zerolog level. zerolog
// has no notice or critical: notice emits at info and critical at error, and
// the original level name travels in the "severity" field. Critical does not
// map to zerolog's fatal because fatal terminates the process.
func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo, LevelNotice:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelError, LevelCritical:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
