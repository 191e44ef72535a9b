// Package ports parses port ranges and binds the first free port in one.
package ports

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrNoFreePort is returned when every port in a range is taken.
var ErrNoFreePort = errors.New("no free port in range")

// Range is an inclusive port range.
type Range struct {
	Lower int
	Upper int
}

// Single returns a range holding one port.
func Single(port int) Range {
	return Range{Lower: port, Upper: port}
}

func (r Range) String() string {
	if r.Lower == r.Upper {
		return strconv.Itoa(r.Lower)
	}
	return fmt.Sprintf("%d-%d", r.Lower, r.Upper)
}

// ParseRange parses "8080" or "8080-8090". The lower bound must not
// exceed the upper bound. Port 0 asks the system for any free port.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	lowerStr, upperStr, isRange := strings.Cut(s, "-")
	if !isRange {
		upperStr = lowerStr
	}

	lower, err := parsePort(lowerStr)
	if err != nil {
		return Range{}, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	upper, err := parsePort(upperStr)
	if err != nil {
		return Range{}, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	if lower > upper {
		return Range{}, fmt.Errorf("invalid port range %q: lower bound exceeds upper bound", s)
	}
	return Range{Lower: lower, Upper: upper}, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

// Listen binds host to the first free port in r and returns the listener
// and the bound port.
func Listen(host string, r Range) (net.Listener, int, error) {
	var lastErr error
	for port := r.Lower; port <= r.Upper; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			lastErr = err
			continue
		}
		return ln, ln.Addr().(*net.TCPAddr).Port, nil
	}
	return nil, 0, fmt.Errorf("%w %s: %v", ErrNoFreePort, r, lastErr)
}
