package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

const (
	DNSResolves  = "RESOLVES"
	DNSNoAddress = "NO_A_RECORD"
	DNSNXDomain  = "NXDOMAIN"
	DNSFailure   = "SERVFAIL_or_TIMEOUT"
	DNSInvalid   = "INVALID_NAME"
)

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

type DNSStatus struct {
	Domain        string
	IPs           []string
	CNAME         string
	Nameservers   []string
	Class         string
	ResolverError string
}

// DNSDiagnoser explains why a host did not answer ping.
type DNSDiagnoser struct {
	Resolver Resolver
	Timeout  time.Duration
}

func NewDNSDiagnoser() *DNSDiagnoser {
	return &DNSDiagnoser{Resolver: net.DefaultResolver, Timeout: 3 * time.Second}
}

func (d *DNSDiagnoser) Diagnose(ctx context.Context, host string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(host)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") || strings.HasPrefix(s.Domain, "-") {
		s.Class = DNSInvalid
		return s
	}
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	ips, err := d.Resolver.LookupIP(ctx, "ip", s.Domain)
	switch {
	case err == nil && len(ips) > 0:
		for _, ip := range ips {
			s.IPs = append(s.IPs, ip.String())
		}
		s.Class = DNSResolves
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = DNSNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = DNSFailure
			}
		}
	}

	if cname, err := d.Resolver.LookupCNAME(ctx, s.Domain); err == nil && !strings.EqualFold(cname, s.Domain+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}
	if ns, err := d.Resolver.LookupNS(ctx, s.Domain); err == nil {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
	}

	// A zone with nameservers but no address is not NXDOMAIN.
	if len(s.Nameservers) > 0 && (s.Class == DNSNXDomain || s.Class == "") && len(s.IPs) == 0 {
		s.Class = DNSNoAddress
	}
	if s.Class == "" {
		if s.ResolverError != "" {
			s.Class = DNSFailure
		} else {
			s.Class = DNSNXDomain
		}
	}
	return s
}
