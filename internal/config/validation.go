package config

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
)

// Validate checks cfg after defaults have been applied.
func Validate(cfg *Config) error {
	transport, err := transportNormalizer.Parse(string(cfg.Builder.Transport))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid builder transport").
			WithContext("transport", string(cfg.Builder.Transport)).
			Build()
	}

	u, err := url.Parse(cfg.Builder.URL)
	if err != nil || u.Host == "" {
		return errors.ConfigError("builder url must be absolute").
			WithContext("url", cfg.Builder.URL).
			Build()
	}
	switch transport {
	case TransportHTTP:
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.ConfigError("builder url must use http or https").
				WithContext("url", cfg.Builder.URL).
				Build()
		}
	case TransportNATS:
		if u.Scheme != "nats" && u.Scheme != "tls" {
			return errors.ConfigError("builder url must use nats or tls").
				WithContext("url", cfg.Builder.URL).
				Build()
		}
		if strings.TrimSpace(cfg.Builder.Subject) == "" {
			return errors.ConfigError("builder subject is required for nats transport").Build()
		}
	}

	if cfg.Builder.Timeout < 0 {
		return errors.ConfigError("builder timeout must not be negative").Build()
	}
	if cfg.Refresh.Interval < 0 {
		return errors.ConfigError("refresh interval must not be negative").Build()
	}
	if cfg.History.Limit < 0 {
		return errors.ConfigError("history limit must not be negative").Build()
	}

	if err := ValidateNavigation(cfg.Navigation); err != nil {
		return err
	}

	if cfg.Server.Address == cfg.Server.AdminAddress {
		return errors.ConfigError("server address and admin address must differ").
			WithContext("address", cfg.Server.Address).
			Build()
	}
	return nil
}

// ValidateNavigation checks that the destination and login paths can be routed
// next to the JSON API.
func ValidateNavigation(nav NavigationConfig) error {
	for name, p := range map[string]string{
		"navigation.destination": nav.Destination,
		"navigation.login_path":  nav.LoginPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return errors.ConfigError("path must start with /").
				WithContext("field", name).
				WithContext("value", p).
				Build()
		}
		if p == strings.TrimSuffix(APIPathPrefix, "/") || strings.HasPrefix(p, APIPathPrefix) {
			return errors.ConfigError("path is reserved for the JSON API").
				WithContext("field", name).
				WithContext("value", p).
				Build()
		}
		if strings.ContainsAny(p, "{} \t") {
			return errors.ConfigError("path must not contain spaces or braces").
				WithContext("field", name).
				WithContext("value", p).
				Build()
		}
	}
	if nav.Destination == nav.LoginPath {
		return errors.ConfigError("navigation destination must differ from login path").Build()
	}
	return nil
}
