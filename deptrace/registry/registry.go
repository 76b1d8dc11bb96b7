package registry

import (
	"github.com/promptpack/promptpack/deptrace/langsupport"
	"github.com/promptpack/promptpack/deptrace/languages/python"
)

// modules is the single source of truth for traceable languages. Adding or
// removing a language should happen here.
var modules = []langsupport.Module{
	python.Module{},
}

// Modules returns supported language modules in deterministic order.
func Modules() []langsupport.Module {
	return append([]langsupport.Module(nil), modules...)
}

// ModuleForExtension returns the module registered for the provided extension.
func ModuleForExtension(ext string) (langsupport.Module, bool) {
	for _, module := range modules {
		for _, moduleExt := range module.Extensions() {
			if moduleExt == ext {
				return module, true
			}
		}
	}

	return nil, false
}
