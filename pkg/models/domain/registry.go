package domain

import (
	"fmt"
	"strings"
)

// DiscoveredRegistry is one ECR registry endpoint inside one account,
// collapsed from the repository-level asset records under it.
type DiscoveredRegistry struct {
	// URL is the canonical registry host, see CanonicalRegistryURL.
	URL          string
	AccountID    string
	Region       string
	Repositories []string
}

// RegistrationURL is the form the vendor expects on registration.
func (r DiscoveredRegistry) RegistrationURL() string {
	return "https://" + r.URL
}

// ECRRegistryURL builds the canonical registry host for an account/region pair.
func ECRRegistryURL(accountID, region string) string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", accountID, region)
}

// CanonicalRegistryURL lowercases a registry URL and strips the scheme and
// any trailing slash. Discovered and existing registries are matched on this
// form only; registration calls still send the https:// form.
func CanonicalRegistryURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimRight(u, "/")
}

// AccountIDFromRegistryURL extracts the owning account id from an ECR
// registry URL, or returns "" when the host does not follow the
// <account>.dkr.ecr.<region>.amazonaws.com pattern.
func AccountIDFromRegistryURL(raw string) string {
	host := CanonicalRegistryURL(raw)
	label, rest, ok := strings.Cut(host, ".")
	if !ok || !strings.HasPrefix(rest, "dkr.ecr.") {
		return ""
	}
	if label == "" || strings.ContainsFunc(label, func(r rune) bool { return r < '0' || r > '9' }) {
		return ""
	}
	return label
}
