// Package logging provides a process-wide structured logger for memsim.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and then retrieved via GetLogger. The memory model,
// the drivers and the inspector all obtain their logger through this package
// so that level and destination are controlled from a single place.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, OutputPath: "memsim.log"}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level logs to stderr without a log file. Stdout is
// left to the drivers, which print page dumps there.
//
// # Retrieving the logger
//
//	logger := logging.GetLogger()
//	logger.Info("ram created", "size", ram.Size())
//
// If GetLogger is called before Init, a default stderr logger is created
// lazily (via sync.Once) so that packages that log during init are safe.
//
// # Context helpers
//
// Several helpers return child loggers pre-populated with structured fields:
//
//	log := logging.WithPage(id)       // adds page_id field
//	log := logging.WithPID(pid)       // adds pid field
//	log := logging.WithComponent("x") // adds component field
package logging
