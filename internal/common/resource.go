package common

import (
	"net/url"

	"github.com/RassulYunussov/ec3client/common"
)

// Resource groups requests for per-resource policies: method plus target host.
func Resource(method common.Method, rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return method.String() + "_" + host
}
