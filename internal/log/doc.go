// Package log provides secure logging built on top of the standard slog package.
//
// REVIGO is a JSP application that tracks submissions with a JSESSIONID
// cookie. The SecureHandler masks cookie and credential attributes so that
// verbose logs can be shared when reporting problems with the service.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Debug("response received",
//	    "set-cookie", "JSESSIONID=0A1B2C", // logged as ***REDACTED***
//	    "url", "http://revigo.irb.hr/",
//	)
//	slog.SetDefault(logger)
package log
