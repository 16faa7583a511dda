package domain

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var validLabelRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// ValidateDomainName checks if the provided name is a syntactically
// plausible fully qualified domain name.
func ValidateDomainName(name string) error {
	if name == "" {
		return fmt.Errorf("domain name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("domain name exceeds %d characters", MaxNameLength)
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return fmt.Errorf("domain name %q must have at least two labels", name)
	}
	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("domain name %q contains empty label", name)
		}
		if !validLabelRegex.MatchString(label) {
			return fmt.Errorf("label %q contains invalid characters or format", label)
		}
	}
	return nil
}

// ValidIPAddr reports whether the string parses as an IPv4 or IPv6 literal.
func ValidIPAddr(addr string) bool {
	return net.ParseIP(addr) != nil
}

// IsIPv6 reports whether the literal is an IPv6 address.
func IsIPv6(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.To4() == nil
}

// IsSubdomain reports whether hostname sits underneath the given domain name.
func IsSubdomain(domainName, hostname string) bool {
	return strings.HasSuffix(strings.ToLower(hostname), "."+strings.ToLower(domainName))
}

// CheckHostAddrCombo enforces the glue rule for one host entry: a hostname
// under the owning domain must carry at least one IP address, a hostname
// outside it must carry none, and every address must be a valid v4 or v6
// literal.
func CheckHostAddrCombo(domainName, hostname string, addrs []string) error {
	if IsSubdomain(domainName, hostname) {
		if len(addrs) == 0 {
			return fmt.Errorf("nameserver %s needs to have an IP address because it is a subdomain of %s", hostname, domainName)
		}
	} else if len(addrs) > 0 {
		return fmt.Errorf("nameserver %s cannot have IP addresses because it is not a subdomain of %s", hostname, domainName)
	}
	for _, addr := range addrs {
		if !ValidIPAddr(addr) {
			return fmt.Errorf("nameserver %s has an invalid IP address: %s", hostname, addr)
		}
	}
	return nil
}

// ValidateNameserver checks the hostname syntax and the glue rule for one
// desired nameserver entry.
func ValidateNameserver(domainName string, ns Nameserver) error {
	hostname := strings.ToLower(ns.Hostname)
	if len(hostname) > MaxNameLength {
		return fmt.Errorf("hostname %q exceeds %d characters", ns.Hostname, MaxNameLength)
	}
	if err := ValidateDomainName(hostname); err != nil {
		return fmt.Errorf("invalid hostname %q: %w", ns.Hostname, err)
	}
	return CheckHostAddrCombo(domainName, hostname, ns.Addresses)
}
