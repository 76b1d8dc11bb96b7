package langsupport

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parsers is a caller-owned registry of tree-sitter parsers keyed by language
// name. Create one per process and pass it to language modules so each grammar
// is set up once and reused; avoids hidden package-level parser state and
// keeps tests hermetic.
type Parsers struct {
	mu     sync.Mutex
	byLang map[string]*sitter.Parser
}

// NewParsers returns an empty parser registry.
func NewParsers() *Parsers {
	return &Parsers{byLang: make(map[string]*sitter.Parser)}
}

// Acquire returns the parser registered for the named language, creating and
// configuring it on first use. The returned parser is not safe for concurrent
// use; the traversal is single-threaded so sequential reuse is fine.
func (p *Parsers) Acquire(name string, language *sitter.Language) *sitter.Parser {
	p.mu.Lock()
	defer p.mu.Unlock()

	if parser, ok := p.byLang[name]; ok {
		return parser
	}

	parser := sitter.NewParser()
	parser.SetLanguage(language)
	p.byLang[name] = parser
	return parser
}
