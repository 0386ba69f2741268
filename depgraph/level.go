package depgraph

import (
	"fmt"
	"strings"
)

// Level is a package's position in the dependency graph.
type Level uint8

//go:generate go tool stringer -type=Level -trimprefix=Level

// Package levels.
const (
	// Depended on only by non-root packages, or not at all.
	LevelTransitive Level = iota
	// Directly depended on by a root package.
	LevelTop
	// Described by the document.
	LevelRoot
)

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(l.String())), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (l *Level) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for i := 0; i < len(_Level_index)-1; i++ {
		if strings.ToLower(_Level_name[_Level_index[i]:_Level_index[i+1]]) == s {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("depgraph: unknown level %q", string(b))
}
