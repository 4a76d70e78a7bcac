package config

import (
	"strings"
	"time"
)

// Default values.
const (
	DefaultAddress        = ":8080"
	DefaultAdminAddress   = ":8081"
	DefaultBuilderURL     = "http://127.0.0.1:8000/api/library/build"
	DefaultNATSURL        = "nats://127.0.0.1:4222"
	DefaultBuilderSubject = "library.build"
	DefaultDestination    = "/library"
	DefaultLoginPath      = "/"
	DefaultSessionDB      = "./data/session.db"
	DefaultHistoryDB      = "./data/history.db"
	DefaultHistoryLimit   = 50
)

// APIPathPrefix is the path space of the JSON API; navigation paths may not use it.
const APIPathPrefix = "/api/"

func applyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.Address == "" {
		s.Address = DefaultAddress
	}
	if s.AdminAddress == "" {
		s.AdminAddress = DefaultAdminAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = Duration(30 * time.Second)
	}
	// Builds can take minutes; the write timeout must outlast them.
	if s.WriteTimeout == 0 {
		s.WriteTimeout = Duration(5 * time.Minute)
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = Duration(2 * time.Minute)
	}

	b := &cfg.Builder
	b.Transport = Transport(strings.ToLower(strings.TrimSpace(string(b.Transport))))
	if b.Transport == "" {
		b.Transport = TransportHTTP
	}
	if b.Transport == TransportNATS {
		if b.URL == "" {
			b.URL = DefaultNATSURL
		}
		if b.Subject == "" {
			b.Subject = DefaultBuilderSubject
		}
	} else if b.URL == "" {
		b.URL = DefaultBuilderURL
	}

	if cfg.Session.PersistCredentialsOnSuccess == nil {
		persist := true
		cfg.Session.PersistCredentialsOnSuccess = &persist
	}
	if cfg.Session.DBPath == "" {
		cfg.Session.DBPath = DefaultSessionDB
	}

	if cfg.Navigation.Destination == "" {
		cfg.Navigation.Destination = DefaultDestination
	}
	if cfg.Navigation.LoginPath == "" {
		cfg.Navigation.LoginPath = DefaultLoginPath
	}

	if cfg.History.DBPath == "" {
		cfg.History.DBPath = DefaultHistoryDB
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = DefaultHistoryLimit
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
