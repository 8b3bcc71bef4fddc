package graph

// FilePart is everything one file contributed to a run. A skipped file still has
// its module-body node and Contains edge but no imports or call sites.
type FilePart struct {
	File      SourceFile
	DependsOn []DependsOnEdge
	Functions []FunctionNode
	Contains  []ContainsEdge
	CallSites []CallSite
	Skipped   *SkippedFile
}

// Assemble merges per-file parts in the given order, then resolves call sites
// against the project-wide function index. Resolution only starts once every
// part is merged.
func Assemble(parts []FilePart) *Model {
	m := &Model{
		files: make([]SourceFile, 0, len(parts)),
	}
	var sites []CallSite
	for _, part := range parts {
		m.files = append(m.files, part.File)
		m.functions = append(m.functions, part.Functions...)
		m.dependsOn = append(m.dependsOn, part.DependsOn...)
		m.contains = append(m.contains, part.Contains...)
		sites = append(sites, part.CallSites...)
		if part.Skipped != nil {
			m.skipped = append(m.skipped, *part.Skipped)
		}
	}

	m.calls, m.unresolved = NewFunctionIndex(m.functions).Resolve(sites)
	m.callSites = len(sites)
	return m
}
