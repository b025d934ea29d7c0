package config

import "fmt"

const maxThreshold = 255
const maxInt31 = 1<<31 - 1

// Validate checks a Config against the engine's construction-time
// rules, returning the first violation found.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	if c.ShmName == "" {
		return fmt.Errorf("config: shm_name is required")
	}
	if (c.SSLCert == "") != (c.SSLKey == "") {
		return fmt.Errorf("config: ssl_cert and ssl_key must both be set or both be empty")
	}

	if err := validateActiveType(c.Checks.Active.Type); err != nil {
		return err
	}
	if err := validatePassiveType(c.Checks.Passive.Type); err != nil {
		return err
	}

	if err := checkRange("checks.active.timeout", c.Checks.Active.Timeout); err != nil {
		return err
	}
	if err := checkRange("checks.active.concurrency", c.Checks.Active.Concurrency); err != nil {
		return err
	}
	if err := checkRange("checks.active.healthy.interval", c.Checks.Active.Healthy.Interval); err != nil {
		return err
	}
	if err := checkRange("checks.active.unhealthy.interval", c.Checks.Active.Unhealthy.Interval); err != nil {
		return err
	}

	if err := checkThreshold("checks.active.healthy.successes", c.Checks.Active.Healthy.Successes); err != nil {
		return err
	}
	if err := checkThreshold("checks.active.unhealthy.tcp_failures", c.Checks.Active.Unhealthy.TCPFailures); err != nil {
		return err
	}
	if err := checkThreshold("checks.active.unhealthy.timeouts", c.Checks.Active.Unhealthy.Timeouts); err != nil {
		return err
	}
	if err := checkThreshold("checks.active.unhealthy.http_failures", c.Checks.Active.Unhealthy.HTTPFailures); err != nil {
		return err
	}
	if err := checkThreshold("checks.passive.healthy.successes", c.Checks.Passive.Healthy.Successes); err != nil {
		return err
	}
	if err := checkThreshold("checks.passive.unhealthy.tcp_failures", c.Checks.Passive.Unhealthy.TCPFailures); err != nil {
		return err
	}
	if err := checkThreshold("checks.passive.unhealthy.timeouts", c.Checks.Passive.Unhealthy.Timeouts); err != nil {
		return err
	}
	if err := checkThreshold("checks.passive.unhealthy.http_failures", c.Checks.Passive.Unhealthy.HTTPFailures); err != nil {
		return err
	}

	if isHTTPProfile(c.Checks.Active.Type) && c.Checks.Active.Unhealthy.HTTPFailures > 0 && c.Checks.Active.Unhealthy.TCPFailures == 0 {
		return fmt.Errorf("config: checks.active.unhealthy.http_failures > 0 requires checks.active.unhealthy.tcp_failures > 0")
	}
	if isHTTPProfile(c.Checks.Passive.Type) && c.Checks.Passive.Unhealthy.HTTPFailures > 0 && c.Checks.Passive.Unhealthy.TCPFailures == 0 {
		return fmt.Errorf("config: checks.passive.unhealthy.http_failures > 0 requires checks.passive.unhealthy.tcp_failures > 0")
	}

	// https_sni is required for https checks only when a target carries
	// neither a hostheader nor a hostname to fall back to; that is a
	// per-target property AddTarget receives, not something visible
	// here, so activeServerName enforces the fallback at probe time
	// instead of this config-wide check rejecting an otherwise-valid
	// SNI-less config.

	return nil
}

func validateActiveType(t string) error {
	switch t {
	case "http", "https", "tcp":
		return nil
	default:
		return fmt.Errorf("config: checks.active.type must be one of http, https, tcp, got %q", t)
	}
}

func validatePassiveType(t string) error {
	switch t {
	case "http", "https", "tcp":
		return nil
	default:
		return fmt.Errorf("config: checks.passive.type must be one of http, https, tcp, got %q", t)
	}
}

func isHTTPProfile(t string) bool {
	return t == "http" || t == "https"
}

func checkRange(field string, v int) error {
	if v < 0 || v > maxInt31 {
		return fmt.Errorf("config: %s must be in [0, 2^31-1], got %d", field, v)
	}
	return nil
}

func checkThreshold(field string, v int) error {
	if v < 0 || v >= maxThreshold {
		return fmt.Errorf("config: %s must be < 255, got %d", field, v)
	}
	return nil
}
