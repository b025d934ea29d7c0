package config

// DefaultConfig returns the engine's out-of-the-box thresholds. Name
// and ShmName are left empty; callers must set them before Validate.
func DefaultConfig() *Config {
	return &Config{
		Checks: ChecksConfig{
			Active: ActiveCheckConfig{
				Type:                   "http",
				Timeout:                1,
				Concurrency:            10,
				HTTPPath:               "/",
				HTTPSVerifyCertificate: true,
				Healthy: ActiveHealthyThresholds{
					Interval:     0,
					HTTPStatuses: NewStatusSet(200, 302),
					Successes:    2,
				},
				Unhealthy: ActiveUnhealthyThresholds{
					Interval:     0,
					HTTPStatuses: NewStatusSet(429, 404, 500, 501, 502, 503, 504, 505),
					TCPFailures:  2,
					Timeouts:     3,
					HTTPFailures: 5,
				},
			},
			Passive: PassiveCheckConfig{
				Type: "http",
				Healthy: PassiveHealthyThresholds{
					HTTPStatuses: defaultPassiveHealthyStatuses(),
					Successes:    5,
				},
				Unhealthy: PassiveUnhealthyThresholds{
					HTTPStatuses: NewStatusSet(429, 500, 503),
					TCPFailures:  2,
					Timeouts:     7,
					HTTPFailures: 5,
				},
			},
		},
	}
}

// defaultPassiveHealthyStatuses is "2xx and 3xx", i.e. every code in
// [200,299] plus every code in [300,399].
func defaultPassiveHealthyStatuses() StatusSet {
	codes := make([]int, 0, 200)
	for c := 200; c < 400; c++ {
		codes = append(codes, c)
	}
	return NewStatusSet(codes...)
}
