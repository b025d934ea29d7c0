package config

// Config is the configuration for a single health-checking engine
// instance. Name and ShmName are required; everything else has a
// sensible default from DefaultConfig.
type Config struct {
	Name    string `yaml:"name"`
	ShmName string `yaml:"shm_name"`

	SSLCert string `yaml:"ssl_cert"`
	SSLKey  string `yaml:"ssl_key"`

	Checks ChecksConfig `yaml:"checks"`
}

// ChecksConfig groups the active and passive health-check profiles.
type ChecksConfig struct {
	Active  ActiveCheckConfig  `yaml:"active"`
	Passive PassiveCheckConfig `yaml:"passive"`
}

// ActiveCheckConfig configures the C6 active prober and C7 scheduler.
type ActiveCheckConfig struct {
	Type        string `yaml:"type"` // http, https, tcp
	Timeout     int    `yaml:"timeout"`
	Concurrency int    `yaml:"concurrency"`

	HTTPPath string `yaml:"http_path"`

	HTTPSSNI               string `yaml:"https_sni"`
	HTTPSVerifyCertificate bool   `yaml:"https_verify_certificate"`

	ReqHeaders []string `yaml:"req_headers"`

	Healthy   ActiveHealthyThresholds   `yaml:"healthy"`
	Unhealthy ActiveUnhealthyThresholds `yaml:"unhealthy"`
}

// ActiveHealthyThresholds configures the healthy-tick.
type ActiveHealthyThresholds struct {
	Interval     int       `yaml:"interval"`
	HTTPStatuses StatusSet `yaml:"http_statuses"`
	Successes    int       `yaml:"successes"`
}

// ActiveUnhealthyThresholds configures the unhealthy-tick.
type ActiveUnhealthyThresholds struct {
	Interval     int       `yaml:"interval"`
	HTTPStatuses StatusSet `yaml:"http_statuses"`
	TCPFailures  int       `yaml:"tcp_failures"`
	Timeouts     int       `yaml:"timeouts"`
	HTTPFailures int       `yaml:"http_failures"`
}

// PassiveCheckConfig configures the C5 passive report API.
type PassiveCheckConfig struct {
	Type      string                     `yaml:"type"`
	Healthy   PassiveHealthyThresholds   `yaml:"healthy"`
	Unhealthy PassiveUnhealthyThresholds `yaml:"unhealthy"`
}

// PassiveHealthyThresholds configures passive success accounting.
type PassiveHealthyThresholds struct {
	HTTPStatuses StatusSet `yaml:"http_statuses"`
	Successes    int       `yaml:"successes"`
}

// PassiveUnhealthyThresholds configures passive failure accounting.
type PassiveUnhealthyThresholds struct {
	HTTPStatuses StatusSet `yaml:"http_statuses"`
	TCPFailures  int       `yaml:"tcp_failures"`
	Timeouts     int       `yaml:"timeouts"`
	HTTPFailures int       `yaml:"http_failures"`
}
