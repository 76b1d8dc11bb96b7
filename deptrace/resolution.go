package deptrace

// ResolutionKind classifies what a module reference points at.
type ResolutionKind int

const (
	// ResolutionUnresolved means the module matched no known classification.
	// This is not an error: it covers installed-but-unlisted packages as well
	// as genuinely broken imports.
	ResolutionUnresolved ResolutionKind = iota
	// ResolutionInternal means the module maps to a file inside the project.
	ResolutionInternal
	// ResolutionStdlib means the module's top-level segment is a Python
	// standard library module.
	ResolutionStdlib
	// ResolutionExternal means the module's top-level segment is a known
	// externally-installed package.
	ResolutionExternal
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionInternal:
		return "internal"
	case ResolutionStdlib:
		return "stdlib"
	case ResolutionExternal:
		return "external"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of resolving one absolute module name. Path is
// set for internal resolutions; Name is set for stdlib and external ones.
type Resolution struct {
	Kind ResolutionKind
	Path string
	Name string
}
