// Package logging provides a small leveled logging facade for the
// clip service.
//
// Levels are DEBUG, INFO, WARN, ERROR and FATAL. The active level is
// taken from the LOG_LEVEL environment variable (or DEBUG=1 as a
// shortcut for debug) and defaults to INFO.
package logging
