// Package purl maps package URLs onto the package ecosystems understood by
// advisory databases.
package purl

import (
	"fmt"
	"strings"
	"sync"
	"unique"

	"github.com/package-url/packageurl-go"
)

// Ecosystem names, as used by the GitHub advisory database.
const (
	EcosystemGo       = "GO"
	EcosystemPip      = "PIP"
	EcosystemRust     = "RUST"
	EcosystemNPM      = "NPM"
	EcosystemMaven    = "MAVEN"
	EcosystemNuGet    = "NUGET"
	EcosystemRubyGems = "RUBYGEMS"
	EcosystemComposer = "COMPOSER"
	EcosystemPub      = "PUB"
	EcosystemSwift    = "SWIFT"
	EcosystemErlang   = "ERLANG"
	EcosystemActions  = "ACTIONS"
)

// ErrUnhandledPurl is returned when no ecosystem is registered for a PURL type.
type ErrUnhandledPurl struct {
	Type string
}

// Error returns the error message.
func (e ErrUnhandledPurl) Error() string {
	return fmt.Sprintf("no ecosystem registered for PURL type %q", e.Type)
}

// Parse parses a purl locator as found in an SPDX external reference.
func Parse(locator string) (packageurl.PackageURL, error) {
	p, err := packageurl.FromString(strings.TrimSpace(locator))
	if err != nil {
		return packageurl.PackageURL{}, fmt.Errorf("purl: parse %q: %w", locator, err)
	}
	return p, nil
}

// NameFunc renders the package name an advisory source expects for a PURL.
type NameFunc func(p packageurl.PackageURL) string

type entry struct {
	Ecosystem string
	Name      NameFunc
}

// Registry is a thread-safe mapping of PURL types to ecosystems.
type Registry struct {
	types map[unique.Handle[string]]entry
	mu    sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[unique.Handle[string]]entry),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared Registry populated with the known PURL
// types. Callers must not register additional types on it; use [NewRegistry]
// for that.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		r.Register(packageurl.TypeGolang, EcosystemGo, namespaced)
		r.Register(packageurl.TypePyPi, EcosystemPip, lowerName)
		r.Register(packageurl.TypeCargo, EcosystemRust, nil)
		r.Register(packageurl.TypeNPM, EcosystemNPM, npmName)
		r.Register(packageurl.TypeMaven, EcosystemMaven, mavenName)
		r.Register(packageurl.TypeNuget, EcosystemNuGet, nil)
		r.Register(packageurl.TypeGem, EcosystemRubyGems, nil)
		r.Register(packageurl.TypeComposer, EcosystemComposer, namespaced)
		r.Register("pub", EcosystemPub, nil)
		r.Register(packageurl.TypeSwift, EcosystemSwift, namespaced)
		r.Register(packageurl.TypeHex, EcosystemErlang, nil)
		r.Register(packageurl.TypeGithub, EcosystemActions, namespaced)
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register associates the PURL type with an ecosystem. If name is nil, the
// bare PURL name is used as the query name.
func (r *Registry) Register(purlType, ecosystem string, name NameFunc) {
	if name == nil {
		name = bareName
	}
	r.mu.Lock()
	r.types[key(purlType)] = entry{Ecosystem: ecosystem, Name: name}
	r.mu.Unlock()
}

// Ecosystem reports the ecosystem registered for the PURL type.
func (r *Registry) Ecosystem(purlType string) (string, bool) {
	e, ok := r.lookup(purlType)
	return e.Ecosystem, ok
}

// QueryName renders the package name for p the way its ecosystem spells it.
func (r *Registry) QueryName(p packageurl.PackageURL) (string, error) {
	e, ok := r.lookup(p.Type)
	if !ok {
		return "", ErrUnhandledPurl{Type: p.Type}
	}
	return e.Name(p), nil
}

// Resolve parses the locator and returns its ecosystem, query name, and
// version in one step.
func (r *Registry) Resolve(locator string) (ecosystem, name, version string, err error) {
	p, err := Parse(locator)
	if err != nil {
		return "", "", "", err
	}
	e, ok := r.lookup(p.Type)
	if !ok {
		return "", "", "", ErrUnhandledPurl{Type: p.Type}
	}
	return e.Ecosystem, e.Name(p), p.Version, nil
}

func (r *Registry) lookup(purlType string) (entry, bool) {
	r.mu.RLock()
	e, ok := r.types[key(purlType)]
	r.mu.RUnlock()
	return e, ok
}

func key(purlType string) unique.Handle[string] {
	return unique.Make(strings.ToLower(purlType))
}

// QueryName is [Registry.QueryName] on the [DefaultRegistry].
func QueryName(p packageurl.PackageURL) (string, error) {
	return DefaultRegistry().QueryName(p)
}

func bareName(p packageurl.PackageURL) string { return p.Name }

func lowerName(p packageurl.PackageURL) string { return strings.ToLower(p.Name) }

func namespaced(p packageurl.PackageURL) string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + "/" + p.Name
}

func npmName(p packageurl.PackageURL) string {
	if p.Namespace == "" {
		return p.Name
	}
	ns := p.Namespace
	if !strings.HasPrefix(ns, "@") {
		ns = "@" + ns
	}
	return ns + "/" + p.Name
}

func mavenName(p packageurl.PackageURL) string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + ":" + p.Name
}
