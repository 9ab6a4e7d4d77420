package ios

import (
	"net/url"
	"strings"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
)

// App Transport Security keys.
const (
	atsAllowsArbitraryLoads      = "NSAllowsArbitraryLoads"
	atsAllowsArbitraryLoadsWeb   = "NSAllowsArbitraryLoadsInWebContent"
	atsAllowsArbitraryLoadsMedia = "NSAllowsArbitraryLoadsForMedia"
	atsAllowsLocalNetworking     = "NSAllowsLocalNetworking"
	atsExceptionDomains          = "NSExceptionDomains"
	atsIncludesSubdomains        = "NSIncludesSubdomains"
	atsExceptionInsecureHTTP     = "NSExceptionAllowsInsecureHTTPLoads"
	atsExceptionMinimumTLS       = "NSExceptionMinimumTLSVersion"
	atsExceptionForwardSecrecy   = "NSExceptionRequiresForwardSecrecy"
	atsRequiresCertTransparency  = "NSRequiresCertificateTransparency"
	wildcardOrigin               = "*"
	wildcardSubdomainPrefix      = "*."
)

// origin is one host extracted from an access or navigation rule.
type origin struct {
	scheme     string
	host       string
	subdomains bool
	flags      appconfig.RuleFlags
}

// parseOrigin extracts the host of a rule. Rules that don't name a network
// host (tel:, mailto:, bare paths) report false.
func parseOrigin(raw string) (origin, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return origin{}, false
	}
	if !strings.Contains(raw, "://") {
		if strings.Contains(raw, ":") {
			return origin{}, false
		}
		raw = "https://" + raw
	}

	// url.Parse rejects "*" in the host, so swap the wildcard label out first.
	subdomains := false
	if i := strings.Index(raw, "://"+wildcardSubdomainPrefix); i >= 0 {
		subdomains = true
		raw = raw[:i+3] + raw[i+3+len(wildcardSubdomainPrefix):]
	}
	u, err := url.Parse(raw)
	if err != nil {
		return origin{}, false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" && scheme != "ws" && scheme != "wss" {
		return origin{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || host == wildcardOrigin {
		return origin{}, false
	}
	return origin{scheme: scheme, host: host, subdomains: subdomains}, true
}

// BuildATS computes the NSAppTransportSecurity dictionary for the given rules.
// An empty result means the key should be removed from Info.plist.
//
// A "*" origin or an allows-arbitrary-loads flag on any rule opens all loads,
// and no exception domains are emitted in that case.
func BuildATS(access []appconfig.AccessRule, navigation []appconfig.NavigationRule) map[string]any {
	ats := make(map[string]any)
	arbitrary := false

	var origins []origin
	collect := func(raw string, flags appconfig.RuleFlags) {
		if flags.AllowsArbitraryLoadsInWebContent {
			ats[atsAllowsArbitraryLoadsWeb] = true
		}
		if flags.AllowsArbitraryLoadsForMedia {
			ats[atsAllowsArbitraryLoadsMedia] = true
		}
		if flags.AllowsLocalNetworking {
			ats[atsAllowsLocalNetworking] = true
		}
		if strings.TrimSpace(raw) == wildcardOrigin || flags.AllowsArbitraryLoads {
			arbitrary = true
			return
		}
		if o, ok := parseOrigin(raw); ok {
			o.flags = flags
			origins = append(origins, o)
		}
	}
	for _, r := range access {
		collect(r.Origin, r.RuleFlags)
	}
	for _, r := range navigation {
		collect(r.Href, r.RuleFlags)
	}

	if arbitrary {
		ats[atsAllowsArbitraryLoads] = true
		return ats
	}

	domains := make(map[string]any)
	for _, o := range origins {
		entry, _ := domains[o.host].(map[string]any)
		if entry == nil {
			entry = make(map[string]any)
			domains[o.host] = entry
		}
		mergeDomain(entry, o)
	}
	// Plain HTTPS hosts need no exception.
	for host, entry := range domains {
		if len(entry.(map[string]any)) == 0 {
			delete(domains, host)
		}
	}
	if len(domains) > 0 {
		ats[atsExceptionDomains] = domains
	}
	return ats
}

// mergeDomain folds one origin into its host entry. Later rules override
// values set by earlier ones for the same host.
func mergeDomain(entry map[string]any, o origin) {
	if o.subdomains {
		entry[atsIncludesSubdomains] = true
	}

	switch {
	case o.flags.AllowsInsecureHTTPLoads != nil:
		entry[atsExceptionInsecureHTTP] = *o.flags.AllowsInsecureHTTPLoads
	case o.scheme == "http" || o.scheme == "ws":
		entry[atsExceptionInsecureHTTP] = true
	}

	if o.flags.MinimumTLSVersion != "" {
		entry[atsExceptionMinimumTLS] = o.flags.MinimumTLSVersion
	}
	if o.flags.RequiresForwardSecrecy != nil {
		entry[atsExceptionForwardSecrecy] = *o.flags.RequiresForwardSecrecy
	}
	if o.flags.RequiresCertificateTransparency != nil {
		entry[atsRequiresCertTransparency] = *o.flags.RequiresCertificateTransparency
	}
}
