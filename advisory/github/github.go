// Package github queries the GitHub security advisory database over its
// GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/internal/httputil"
)

// DefaultURL is the GitHub GraphQL endpoint.
const DefaultURL = `https://api.github.com/graphql`

// PageSize is the number of vulnerability nodes requested per query.
const PageSize = 100

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sbomkit",
			Subsystem: "github",
			Name:      "requests_total",
			Help:      "Total number of advisory queries issued, by response status.",
		},
		[]string{"status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sbomkit",
			Subsystem: "github",
			Name:      "request_duration_seconds",
			Help:      "The duration of advisory queries, by ecosystem.",
		},
		[]string{"ecosystem"},
	)
)

// ConfigUnmarshaler can be thought of as an Unmarshal function with the byte
// slice provided, or a Decode function.
//
// The function should populate a passed struct with any configuration
// information.
type ConfigUnmarshaler func(interface{}) error

// Config is the configuration for Client.
type Config struct {
	// URL overrides DefaultURL.
	URL *string `json:"url,omitempty" yaml:"url,omitempty"`
	// Token is sent as a bearer token.
	Token string `json:"token" yaml:"token"`
}

// Client queries the advisory database.
//
// A Client must be created with NewClient or have Configure called before
// use.
type Client struct {
	c     *http.Client
	url   *url.URL
	token string
}

// Option configures a Client created with NewClient.
type Option func(*Client) error

// WithURL sets the GraphQL endpoint.
func WithURL(u string) Option {
	return func(c *Client) error {
		p, err := url.Parse(u)
		if err != nil {
			return fmt.Errorf("github: invalid URL: %w", err)
		}
		c.url = p
		return nil
	}
}

// WithHTTPClient sets the http.Client requests are made with.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.c = hc
		return nil
	}
}

// NewClient returns a Client authenticating with token.
func NewClient(token string, opts ...Option) (*Client, error) {
	u, _ := url.Parse(DefaultURL)
	c := &Client{
		c:     http.DefaultClient,
		url:   u,
		token: token,
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Configure implements the usual configuration hook.
func (c *Client) Configure(ctx context.Context, f ConfigUnmarshaler, hc *http.Client) error {
	var cfg Config
	if f == nil {
		return fmt.Errorf("configuration is nil")
	}
	if err := f(&cfg); err != nil {
		return err
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	c.c = hc
	c.token = cfg.Token
	u := DefaultURL
	if cfg.URL != nil {
		u = *cfg.URL
	}
	var err error
	c.url, err = url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL format for URL: %w", err)
	}
	return nil
}

const query = `query($ecosystem: SecurityAdvisoryEcosystem!, $package: String!, $first: Int!) {
  securityVulnerabilities(first: $first, ecosystem: $ecosystem, package: $package) {
    nodes {
      advisory {
        identifiers { type value }
        severity
        summary
        description
        references { url }
        cvss { score vectorString }
        cwes(first: 20) { nodes { cweId name description } }
        epss { percentage percentile }
        publishedAt
        updatedAt
        withdrawnAt
        permalink
      }
      package { ecosystem name }
      vulnerableVersionRange
      firstPatchedVersion { identifier }
    }
  }
}`

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data struct {
		SecurityVulnerabilities struct {
			Nodes []node `json:"nodes"`
		} `json:"securityVulnerabilities"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type node struct {
	Advisory struct {
		Identifiers []sbomkit.Identifier `json:"identifiers"`
		Severity    string               `json:"severity"`
		Summary     string               `json:"summary"`
		Description string               `json:"description"`
		References  []struct {
			URL string `json:"url"`
		} `json:"references"`
		CVSS *sbomkit.CVSS `json:"cvss"`
		CWEs struct {
			Nodes []sbomkit.CWE `json:"nodes"`
		} `json:"cwes"`
		EPSS        *sbomkit.EPSS `json:"epss"`
		PublishedAt *time.Time    `json:"publishedAt"`
		UpdatedAt   *time.Time    `json:"updatedAt"`
		WithdrawnAt *time.Time    `json:"withdrawnAt"`
		Permalink   string        `json:"permalink"`
	} `json:"advisory"`
	Package struct {
		Ecosystem string `json:"ecosystem"`
		Name      string `json:"name"`
	} `json:"package"`
	VulnerableVersionRange string `json:"vulnerableVersionRange"`
	FirstPatchedVersion    *struct {
		Identifier string `json:"identifier"`
	} `json:"firstPatchedVersion"`
}

func (n *node) vulnerability() sbomkit.SecurityVulnerability {
	a := &n.Advisory
	sev, err := sbomkit.ParseSeverity(a.Severity)
	if err != nil {
		sev = sbomkit.Unknown
	}
	v := sbomkit.SecurityVulnerability{
		Ecosystem: n.Package.Ecosystem,
		Package:   sbomkit.PackageRef{Name: n.Package.Name},
		Advisory: sbomkit.Advisory{
			Identifiers: a.Identifiers,
			Severity:    sev,
			Summary:     a.Summary,
			Description: a.Description,
			CWEs:        a.CWEs.Nodes,
			PublishedAt: a.PublishedAt,
			UpdatedAt:   a.UpdatedAt,
			WithdrawnAt: a.WithdrawnAt,
			Permalink:   a.Permalink,
		},
		VulnerableVersionRange: n.VulnerableVersionRange,
	}
	for _, r := range a.References {
		v.Advisory.References = append(v.Advisory.References, r.URL)
	}
	if a.CVSS != nil {
		v.Advisory.CVSS = *a.CVSS
	}
	if a.EPSS != nil {
		v.Advisory.EPSS = *a.EPSS
	}
	if n.FirstPatchedVersion != nil {
		v.FirstPatchedVersion = n.FirstPatchedVersion.Identifier
	}
	return v
}

// Vulnerabilities returns the advisories recorded for the named package.
//
// A 429 or 5xx response reports an error of kind [sbomkit.ErrTransient]; any
// other failure reported by the server is [sbomkit.ErrPermanent].
func (c *Client) Vulnerabilities(ctx context.Context, ecosystem, name string) ([]sbomkit.SecurityVulnerability, error) {
	const op = "github.Vulnerabilities"
	defer prometheus.NewTimer(requestDuration.WithLabelValues(ecosystem)).ObserveDuration()

	body, err := json.Marshal(request{
		Query: query,
		Variables: map[string]any{
			"ecosystem": strings.ToUpper(ecosystem),
			"package":   name,
			"first":     PageSize,
		},
	})
	if err != nil {
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInternal, Inner: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.String(), bytes.NewReader(body))
	if err != nil {
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInternal, Inner: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", httputil.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "bearer "+c.token)
	}

	res, err := c.c.Do(req)
	if err != nil {
		requestCounter.WithLabelValues("error").Inc()
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrTransient, Message: "request failed", Inner: err}
	}
	defer res.Body.Close()
	requestCounter.WithLabelValues(strconv.Itoa(res.StatusCode)).Inc()
	if err := httputil.CheckResponse(res, http.StatusOK); err != nil {
		kind := sbomkit.ErrPermanent
		var se *httputil.StatusError
		if errors.As(err, &se) && se.Transient() {
			kind = sbomkit.ErrTransient
		}
		return nil, &sbomkit.Error{Op: op, Kind: kind, Inner: err}
	}

	var out response
	if err := json.NewDecoder(io.LimitReader(res.Body, 32<<20)).Decode(&out); err != nil {
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrTransient, Message: "reading response", Inner: err}
	}
	if len(out.Errors) != 0 {
		msgs := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			msgs[i] = e.Message
		}
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrPermanent, Message: "query errors: " + strings.Join(msgs, "; ")}
	}

	nodes := out.Data.SecurityVulnerabilities.Nodes
	vs := make([]sbomkit.SecurityVulnerability, 0, len(nodes))
	for i := range nodes {
		vs = append(vs, nodes[i].vulnerability())
	}
	return vs, nil
}
