package credentials

import (
	"net/url"
	"strings"

	local_errors "github.com/RassulYunussov/ec3client/internal/errors"
)

const (
	DefaultPrimaryName = "EC3_API_KEY"
	DefaultHost        = "buildingtransparency.org"

	// the instance served by the primary credential
	primaryInstance = "ec3"
)

// Credential is a resolved bearer token and the configuration name it came from.
type Credential struct {
	Name  string
	Token string
}

// Resolver maps a request to the bearer token that authorizes it.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	source      Source
	primaryName string
	defaultHost string
}

func NewResolver(source Source, primaryName, defaultHost string) *Resolver {
	if primaryName == "" {
		primaryName = DefaultPrimaryName
	}
	if defaultHost == "" {
		defaultHost = DefaultHost
	}
	return &Resolver{
		source:      source,
		primaryName: primaryName,
		defaultHost: strings.ToLower(defaultHost),
	}
}

// Name returns the configuration name for override or, when override is empty,
// for the instance derived from host. Hosts outside the default domain and the
// "ec3" instance map to the primary name.
func (r *Resolver) Name(override, host string) string {
	return r.names(override, host)[0]
}

// names lists the accepted configuration names, preferred first. An instance
// with '-' or '.' also accepts its unmapped spelling, e.g. EC3_API_KEY_ETL-API
// from the credentials tokens map or the inherited environment.
func (r *Resolver) names(override, host string) []string {
	if override != "" {
		return []string{override}
	}
	label := r.instance(host)
	if label == "" {
		return []string{r.primaryName}
	}
	name := r.primaryName + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(label))
	if verbatim := r.primaryName + "_" + strings.ToUpper(label); verbatim != name {
		return []string{name, verbatim}
	}
	return []string{name}
}

func (r *Resolver) instance(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	suffix := "." + r.defaultHost
	if host == r.defaultHost || !strings.HasSuffix(host, suffix) {
		return ""
	}
	sub := strings.TrimSuffix(host, suffix)
	if sub == primaryInstance {
		return ""
	}
	return sub
}

// Resolve looks up the token for a request URL.
func (r *Resolver) Resolve(override, rawURL string) (Credential, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Credential{}, local_errors.Newf(local_errors.InvalidRequest, err, "malformed request url %q", rawURL)
	}
	names := r.names(override, u.Hostname())
	for _, name := range names {
		if token, ok := r.source.Lookup(name); ok && token != "" {
			return Credential{Name: name, Token: token}, nil
		}
	}
	return Credential{Name: names[0]}, local_errors.Newf(local_errors.ConfigurationError, nil, "credential %s is not configured", strings.Join(names, " or "))
}
