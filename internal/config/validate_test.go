package config

import "testing"

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Name = "api-upstream"
	cfg.ShmName = "relayhealth_api"
	return cfg
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRequiresName(t *testing.T) {
	cfg := validConfig()
	cfg.Name = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted an empty name")
	}
}

func TestValidateRequiresShmName(t *testing.T) {
	cfg := validConfig()
	cfg.ShmName = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted an empty shm_name")
	}
}

func TestValidateSSLCertKeyMustBePaired(t *testing.T) {
	cfg := validConfig()
	cfg.SSLCert = "-----BEGIN CERT-----"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted ssl_cert without ssl_key")
	}
}

func TestValidateRejectsUnknownActiveType(t *testing.T) {
	cfg := validConfig()
	cfg.Checks.Active.Type = "udp"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted an unknown active check type")
	}
}

func TestValidateRejectsThresholdAt255(t *testing.T) {
	cfg := validConfig()
	cfg.Checks.Active.Unhealthy.TCPFailures = 255
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted a threshold of 255")
	}
}

func TestValidateHTTPFailuresRequireTCPFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Checks.Active.Unhealthy.HTTPFailures = 5
	cfg.Checks.Active.Unhealthy.TCPFailures = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted http_failures > 0 with tcp_failures == 0")
	}
}

func TestValidateHTTPSWithoutSNIAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.Checks.Active.Type = "https"
	cfg.Checks.Active.HTTPSSNI = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate rejected https active checks with no https_sni: %v", err)
	}
}

func TestStatusSetContains(t *testing.T) {
	s := NewStatusSet(200, 302)
	if !s.Contains(200) {
		t.Fatal("StatusSet missing 200")
	}
	if s.Contains(404) {
		t.Fatal("StatusSet unexpectedly contains 404")
	}
}

func TestDefaultPassiveHealthyStatusesCoversFullRange(t *testing.T) {
	s := DefaultConfig().Checks.Passive.Healthy.HTTPStatuses
	if !s.Contains(200) || !s.Contains(399) {
		t.Fatal("default passive healthy statuses should span 200-399")
	}
	if s.Contains(400) {
		t.Fatal("default passive healthy statuses should not include 400")
	}
}
