package types

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Endpoint is one configured API binding of the implementation under test.
// Endpoints are indexed positionally against a suite's endpoint specs.
type Endpoint struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Version  string `json:"version" yaml:"version"`
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"` // defaults to http
}

func (e Endpoint) protocol() string {
	if e.Protocol == "" {
		return "http"
	}
	return e.Protocol
}

// BaseURL returns the scheme://host:port root of the endpoint.
func (e Endpoint) BaseURL() string {
	return fmt.Sprintf("%s://%s", e.protocol(), net.JoinHostPort(e.Host, strconv.Itoa(e.Port)))
}

// URL returns the versioned API root for the given API key, following the
// /x-conform/<api>/<version>/ path template, with the device selector
// appended when bound.
func (e Endpoint) URL(apiKey string) string {
	url := fmt.Sprintf("%s/x-conform/%s/%s/", e.BaseURL(), apiKey, e.Version)
	if e.Selector != "" {
		url += e.Selector + "/"
	}
	return url
}

// Validate checks that the binding is complete enough to run against.
// requireSelector mirrors suites that address one of several devices.
func (e Endpoint) Validate(requireSelector bool) error {
	if e.Host == "" {
		return fmt.Errorf("endpoint host is required")
	}
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("endpoint port %d is out of range", e.Port)
	}
	if e.Version == "" {
		return fmt.Errorf("endpoint version is required")
	}
	if !semver.IsValid(canonicalVersion(e.Version)) {
		return fmt.Errorf("endpoint version %q is not a valid version string", e.Version)
	}
	if requireSelector && e.Selector == "" {
		return fmt.Errorf("endpoint selector is required by this suite")
	}
	return nil
}

// CompareVersions orders two API version strings such as "v1.0" and "v1.1".
// The result follows semver.Compare: -1 if a < b, 0 if equal, +1 if a > b.
func CompareVersions(a, b string) int {
	return semver.Compare(canonicalVersion(a), canonicalVersion(b))
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
