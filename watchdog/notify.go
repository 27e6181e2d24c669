package watchdog

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// Notifier delivers the end-of-run completion message. Fire-and-forget:
// delivery failures are logged by the caller, never propagated.
type Notifier interface {
	Notify(subject string, body string) error
}

// NopNotifier is used when no notification address is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) error { return nil }

// SyslogNotifier sends the completion message as an RFC5424 line over TCP.
type SyslogNotifier struct {
	addr    string
	appName string
	timeout time.Duration
}

func NewSyslogNotifier(addr string, timeout time.Duration) *SyslogNotifier {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &SyslogNotifier{addr: addr, appName: "pump-watchdog", timeout: timeout}
}

func (n *SyslogNotifier) Notify(subject string, body string) error {
	conn, err := net.DialTimeout("tcp", n.addr, n.timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(n.timeout))

	host, _ := os.Hostname()
	if host == "" {
		host = "-"
	}

	pri := 134 // local0.info
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	structured := fmt.Sprintf("[pumpwatch subject=\"%s\"]", escapeSDParam(subject))
	line := fmt.Sprintf("<%d>1 %s %s %s - - %s %s\n",
		pri, ts, sanitizeSyslogToken(host), sanitizeSyslogToken(n.appName), structured, strings.TrimSpace(body))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	return w.Flush()
}

func sanitizeSyslogToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func escapeSDParam(v string) string {
	v = strings.ReplaceAll(v, "\\", "\\\\")
	v = strings.ReplaceAll(v, "\"", "\\\"")
	v = strings.ReplaceAll(v, "]", "\\]")
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return v
}
