// passive.go implements C5: the passive report API surfaced to the
// proxy for real production traffic observations.
package health

import (
	"context"
)

// ReportFailure reports a generic failure, selecting HTTP or TCP based
// on the passive profile's type.
func (e *Engine) ReportFailure(ctx context.Context, ip string, port int, hostname string) error {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	cfg := e.cfg.Checks.Passive
	if isHTTPLikeProfile(cfg.Type) {
		return e.report(ctx, target, false, cfg.Unhealthy.HTTPFailures, SelectorHTTP)
	}
	return e.report(ctx, target, false, cfg.Unhealthy.TCPFailures, SelectorTCP)
}

// ReportSuccess reports a generic success against the passive profile.
func (e *Engine) ReportSuccess(ctx context.Context, ip string, port int, hostname string) error {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	cfg := e.cfg.Checks.Passive
	return e.report(ctx, target, true, cfg.Healthy.Successes, SelectorSuccess)
}

// ReportTCPFailure reports a TCP-layer failure against the passive
// profile's tcp_failures threshold.
func (e *Engine) ReportTCPFailure(ctx context.Context, ip string, port int, hostname string) error {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	return e.report(ctx, target, false, e.cfg.Checks.Passive.Unhealthy.TCPFailures, SelectorTCP)
}

// ReportTimeout reports a timeout against the passive profile's
// timeouts threshold.
func (e *Engine) ReportTimeout(ctx context.Context, ip string, port int, hostname string) error {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	return e.report(ctx, target, false, e.cfg.Checks.Passive.Unhealthy.Timeouts, SelectorTimeout)
}

// ReportHTTPStatus classifies an observed HTTP status code against the
// passive profile's status sets: healthy statuses count as success,
// unhealthy statuses (or
// code == 0, meaning nil/invalid) count as an HTTP failure, anything
// else is ignored.
func (e *Engine) ReportHTTPStatus(ctx context.Context, ip string, port int, hostname string, code int) error {
	target := Target{IP: ip, Port: port, Hostname: hostname}
	cfg := e.cfg.Checks.Passive

	switch {
	case cfg.Healthy.HTTPStatuses.Contains(code):
		return e.report(ctx, target, true, cfg.Healthy.Successes, SelectorSuccess)
	case cfg.Unhealthy.HTTPStatuses.Contains(code) || code == 0:
		return e.report(ctx, target, false, cfg.Unhealthy.HTTPFailures, SelectorHTTP)
	default:
		return nil
	}
}

func isHTTPLikeProfile(t string) bool {
	return t == "http" || t == "https"
}
