package sbomkit

import (
	"runtime/debug"
	"sync"
)

// ToolName is the creator name recorded in generated documents.
const ToolName = "sbomkit"

// ToolVersion reports the revision of this module linked into the running
// binary, and can hopefully give some context as to which revision produced a
// document.
var ToolVersion = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	var v string
	if ok {
		if info.Main.Path == modPath {
			v = info.Main.Version
		}
		for _, m := range info.Deps {
			if m.Path != modPath {
				continue
			}
			v = m.Version
			if m.Replace != nil && m.Replace.Version != m.Version {
				v = m.Replace.Version
			}
		}
	}
	if v == "" || v == "(devel)" {
		v = "devel"
	}
	return v
})

const modPath = "github.com/quay/sbomkit"

// ToolCreator returns the creation-info creator string for this module.
func ToolCreator() string {
	return "Tool: " + ToolName + "-" + ToolVersion()
}
