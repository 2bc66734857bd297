// Package telnet turns telnet:// URLs into an invocation of the system
// telnet client.
package telnet

import (
	"errors"
	"regexp"
	"strings"
)

// Scheme is the only accepted URL prefix.
const Scheme = "telnet://"

var (
	// ErrScheme is returned for input that does not start with telnet://.
	ErrScheme = errors.New("The provided URL does not start with 'telnet://'")
	// ErrUsage is returned for a telnet URL that does not match the
	// HOST_IP_ADDRESS:PORT form.
	ErrUsage = errors.New("Must provide a URL in the form of: telnet://HOST_IP_ADDRESS:PORT")
	// ErrNotAnAddress is returned when the host part is empty.
	ErrNotAnAddress = errors.New("URL provided doesn't seem to be an IPv4 or IPv6 address")
)

var urlPattern = regexp.MustCompile(
	`^telnet://((?P<ipv4>[0-9.]*)|\[(?P<ipv6>[0-9a-fA-F:]*)\]):(?P<port>.*)$`)

// Target is the host and port handed to the telnet client.
type Target struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

// Args returns the client arguments, host then port.
func (t Target) Args() []string {
	return []string{t.Host, t.Port}
}

func (t Target) String() string {
	return "telnet " + t.Host + " " + t.Port
}

// ValidateScheme rejects anything that does not start with telnet://.
func ValidateScheme(raw string) error {
	if !strings.HasPrefix(raw, Scheme) {
		return ErrScheme
	}
	return nil
}

// Parse splits a telnet URL into host and port. IPv6 hosts are written in
// brackets and returned without them. The port is passed through as is.
func Parse(raw string) (Target, error) {
	if err := ValidateScheme(raw); err != nil {
		return Target{}, err
	}
	m := urlPattern.FindStringSubmatch(raw)
	if m == nil {
		return Target{}, ErrUsage
	}

	host := m[urlPattern.SubexpIndex("ipv4")]
	if host == "" {
		host = m[urlPattern.SubexpIndex("ipv6")]
	}
	if host == "" {
		return Target{}, ErrNotAnAddress
	}
	return Target{Host: host, Port: m[urlPattern.SubexpIndex("port")]}, nil
}
