// active.go implements C6, the active prober: outbound TCP/TLS/HTTP
// probes the engine issues itself, one full pass driven by the
// scheduler per tick. Grounded on ActiveHealthChecker,
// generalized from its http.Client-based GET to the raw
// connect/handshake/send/receive sequence the wire format needs, and
// from its per-target goroutine fan-out to the fixed-size worker-pool
// partition it requires.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/relayhealth/relayhealth/internal/socket"
	pkglog "github.com/relayhealth/relayhealth/pkg/log"
)

var statusLineRe = regexp.MustCompile(`^HTTP/\d+\.\d+\s+(\d+)`)

// probeOne runs the full C6 sequence against a single target and
// funnels the outcome through the same report entry points C5 uses,
// tagged with the active profile's thresholds.
func (e *Engine) probeOne(ctx context.Context, target Target) {
	cfg := e.cfg.Checks.Active
	timeout := time.Duration(cfg.Timeout) * time.Second

	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.StartProbe(ctx, target.IP, target.Port, target.EffectiveHostname())
		defer span.End()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sock := e.socketFactory()
	defer sock.Close()

	addr := net.JoinHostPort(target.IP, strconv.Itoa(target.Port))
	if err := sock.Connect(ctx, addr, timeout); err != nil {
		e.reportActiveConnectFailure(ctx, target, err)
		return
	}

	if cfg.Type == "tcp" {
		e.reportActiveSuccess(ctx, target)
		return
	}

	if cfg.Type == "https" {
		tlsCfg := socket.TLSConfig{
			Enabled:            true,
			ServerName:         activeServerName(cfg.HTTPSSNI, target),
			InsecureSkipVerify: !cfg.HTTPSVerifyCertificate,
		}
		if e.cfg.SSLCert != "" && e.cfg.SSLKey != "" {
			tlsCfg.ClientCertPEM = []byte(e.cfg.SSLCert)
			tlsCfg.ClientKeyPEM = []byte(e.cfg.SSLKey)
		}
		if err := sock.Handshake(ctx, tlsCfg, timeout); err != nil {
			e.reportActiveConnectFailure(ctx, target, err)
			return
		}
	}

	req := buildActiveRequest(cfg.HTTPPath, cfg.ReqHeaders, target)
	if err := sock.Send(ctx, req, timeout); err != nil {
		e.reportActiveSendFailure(ctx, target, err)
		return
	}

	resp, err := sock.Receive(ctx, timeout)
	if err != nil {
		e.reportActiveSendFailure(ctx, target, err)
		return
	}

	code := parseStatusLine(resp)
	e.reportActiveHTTPStatus(ctx, target, code)
}

// activeServerName resolves the TLS server name: https_sni, then
// hostheader, then hostname.
func activeServerName(sni string, target Target) string {
	if sni != "" {
		return sni
	}
	return target.EffectiveHostHeader()
}

// buildActiveRequest renders the literal HTTP/1.1 wire format an
// active probe sends.
func buildActiveRequest(path string, headers []string, target Target) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)
	b.WriteString("Connection: close\r\n")
	for _, h := range headers {
		b.WriteString(h)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "Host: %s\r\n\r\n", target.EffectiveHostHeader())
	return []byte(b.String())
}

// parseStatusLine matches ^HTTP/\d+\.\d+\s+(\d+); a failed parse
// reports as code 0, which report_http_status routes to the unhealthy
// branch, matching a status line that can never be observed as healthy.
func parseStatusLine(resp []byte) int {
	m := statusLineRe.FindSubmatch(resp)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0
	}
	return code
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (e *Engine) reportActiveConnectFailure(ctx context.Context, target Target, probeErr error) {
	cfg := e.cfg.Checks.Active
	if isTimeoutErr(probeErr) {
		e.logReportErr(target, e.report(ctx, target, false, cfg.Unhealthy.Timeouts, SelectorTimeout))
		return
	}
	e.logReportErr(target, e.report(ctx, target, false, cfg.Unhealthy.TCPFailures, SelectorTCP))
}

func (e *Engine) reportActiveSendFailure(ctx context.Context, target Target, probeErr error) {
	cfg := e.cfg.Checks.Active
	if isTimeoutErr(probeErr) {
		e.logReportErr(target, e.report(ctx, target, false, cfg.Unhealthy.Timeouts, SelectorTimeout))
		return
	}
	e.logReportErr(target, e.report(ctx, target, false, cfg.Unhealthy.TCPFailures, SelectorTCP))
}

func (e *Engine) reportActiveSuccess(ctx context.Context, target Target) {
	cfg := e.cfg.Checks.Active
	e.logReportErr(target, e.report(ctx, target, true, cfg.Healthy.Successes, SelectorSuccess))
}

// reportActiveHTTPStatus mirrors passive.go's ReportHTTPStatus against
// the active profile's thresholds.
func (e *Engine) reportActiveHTTPStatus(ctx context.Context, target Target, code int) {
	cfg := e.cfg.Checks.Active
	switch {
	case cfg.Healthy.HTTPStatuses.Contains(code):
		e.logReportErr(target, e.report(ctx, target, true, cfg.Healthy.Successes, SelectorSuccess))
	case cfg.Unhealthy.HTTPStatuses.Contains(code) || code == 0:
		e.logReportErr(target, e.report(ctx, target, false, cfg.Unhealthy.HTTPFailures, SelectorHTTP))
	}
}

// logReportErr surfaces a report failure without interrupting the
// probe loop: there is no caller waiting on probeOne to propagate it.
func (e *Engine) logReportErr(target Target, err error) {
	if err != nil {
		e.log.Warn("health: active report failed", pkglog.String("target", target.Key()), pkglog.Error(err))
	}
}

// activeCheckTargets partitions list round-robin into concurrency work
// packages, spawns concurrency-1 of them concurrently, and runs the
// last package on the calling goroutine to absorb its time. Between items within a
// package it checks workerExiting and breaks early.
func (e *Engine) activeCheckTargets(ctx context.Context, list []Target) {
	concurrency := e.cfg.Checks.Active.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	packages := make([][]Target, concurrency)
	for i, t := range list {
		idx := i % concurrency
		packages[idx] = append(packages[idx], t)
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency-1; i++ {
		pkg := packages[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.runPackage(ctx, pkg)
		}()
	}
	e.runPackage(ctx, packages[concurrency-1])
	wg.Wait()
}

func (e *Engine) runPackage(ctx context.Context, pkg []Target) {
	for _, target := range pkg {
		if e.workerExiting.Load() {
			return
		}
		e.probeOne(ctx, target)
	}
}
