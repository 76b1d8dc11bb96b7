package python

import "github.com/promptpack/promptpack/deptrace/langsupport"

const languageName = "python"

// Module provides Python dependency tracing support.
type Module struct{}

func (Module) Name() string {
	return languageName
}

func (Module) Extensions() []string {
	return []string{".py"}
}

func (Module) NewExtractor(parsers *langsupport.Parsers) langsupport.Extractor {
	return NewExtractor(parsers)
}

func (Module) NewUsageAnalyzer(parsers *langsupport.Parsers) langsupport.UsageAnalyzer {
	return NewUsageAnalyzer(parsers)
}
