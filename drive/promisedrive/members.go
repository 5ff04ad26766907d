package promisedrive

import (
	"maps"
	"slices"
)

// Kind classifies a drive member for dynamic access through Member.
type Kind int

const (
	// KindUnknown members are not in the table; they are resolved against the raw drive by name.
	KindUnknown Kind = iota
	// KindProperty members are getters, re-read on every access.
	KindProperty
	// KindDualMode members complete through a trailing callback and may also return a promise.
	KindDualMode
	// KindCompanion members produce or consume other drives and are wrapped individually.
	KindCompanion
	// KindForward members are passed through to the raw drive unchanged.
	KindForward
)

func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindDualMode:
		return "dual-mode"
	case KindCompanion:
		return "companion"
	case KindForward:
		return "forward"
	default:
		return "unknown"
	}
}

type member struct {
	kind    Kind
	method  string
	results int
}

// members is the closed classification table, keyed by member name.
// results is the number of values a dual-mode member completes with.
var members = map[string]member{
	"key":          {kind: KindProperty, method: "Key"},
	"discoveryKey": {kind: KindProperty, method: "DiscoveryKey"},
	"version":      {kind: KindProperty, method: "Version"},
	"writable":     {kind: KindProperty, method: "Writable"},

	"ready":        {kind: KindDualMode, method: "Ready", results: 0},
	"readFile":     {kind: KindDualMode, method: "ReadFile", results: 1},
	"writeFile":    {kind: KindDualMode, method: "WriteFile", results: 0},
	"unlink":       {kind: KindDualMode, method: "Unlink", results: 0},
	"mkdir":        {kind: KindDualMode, method: "Mkdir", results: 0},
	"rmdir":        {kind: KindDualMode, method: "Rmdir", results: 0},
	"readdir":      {kind: KindDualMode, method: "Readdir", results: 1},
	"stat":         {kind: KindDualMode, method: "Stat", results: 1},
	"lstat":        {kind: KindDualMode, method: "Lstat", results: 1},
	"access":       {kind: KindDualMode, method: "Access", results: 0},
	"open":         {kind: KindDualMode, method: "Open", results: 1},
	"read":         {kind: KindDualMode, method: "Read", results: 1},
	"write":        {kind: KindDualMode, method: "Write", results: 2},
	"symlink":      {kind: KindDualMode, method: "Symlink", results: 0},
	"mount":        {kind: KindDualMode, method: "Mount", results: 0},
	"unmount":      {kind: KindDualMode, method: "Unmount", results: 0},
	"getAllMounts": {kind: KindDualMode, method: "GetAllMounts", results: 1},
	"close":        {kind: KindDualMode, method: "Close", results: 0},
	"closeFd":      {kind: KindDualMode, method: "CloseFD", results: 0},
	"fileStats":    {kind: KindDualMode, method: "FileStats", results: 1},
	"truncate":     {kind: KindDualMode, method: "Truncate", results: 0},
	"download":     {kind: KindDualMode, method: "Download", results: 2},

	"checkout":         {kind: KindCompanion, method: "Checkout"},
	"createDiffStream": {kind: KindCompanion, method: "CreateDiffStream"},

	"on":                {kind: KindForward, method: "On"},
	"emit":              {kind: KindForward, method: "Emit"},
	"createReadStream":  {kind: KindForward, method: "CreateReadStream"},
	"createWriteStream": {kind: KindForward, method: "CreateWriteStream"},
	"watch":             {kind: KindForward, method: "Watch"},
	"extension":         {kind: KindForward, method: "Extension"},
}

// methods maps the Go method of every table entry back to its member name.
var methods = func() map[string]string {
	byMethod := make(map[string]string, len(members))
	for name, m := range members {
		byMethod[m.method] = name
	}

	return byMethod
}()

// canonicalName resolves the Go method name of a table entry, such as "ReadFile",
// to the entry's member name so it gets the entry's classification.
func canonicalName(name string) string {
	if _, ok := members[name]; ok {
		return name
	}

	if canonical, ok := methods[exportedName(name)]; ok {
		return canonical
	}

	return name
}

// KindOf returns the classification of the member name.
func KindOf(name string) Kind {
	return members[canonicalName(name)].kind
}

// MembersOf returns the sorted names of all members classified as kind.
func MembersOf(kind Kind) []string {
	names := make([]string, 0, len(members))
	for _, name := range slices.Sorted(maps.Keys(members)) {
		if members[name].kind == kind {
			names = append(names, name)
		}
	}

	return names
}
