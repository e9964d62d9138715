// Package logging provides the subsystem-tagged logger used across wbdeps.
//
// It is a thin layer over log/slog: every record carries a "subsystem"
// attribute and the message is formatted printf-style.
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Check", "Analyzing %d documents", len(files))
//	logging.Debug("Analysis", "Variable %s defined at %s", name, path)
//	logging.Warn("Analysis", "Ambiguous node at %s treated as consumer", path)
//	logging.Error("Workbook", err, "Failed to write %s", file)
//
// Subsystems in use: Analysis, Repair, ConfigLoader, Workbook, Watch, and
// one per CLI command.
//
// Before InitForCLI is called, warnings and errors go to stderr and lower
// levels are dropped, so library callers of the analysis package see
// nothing unless something is wrong.
//
// All functions are safe for concurrent use.
package logging
