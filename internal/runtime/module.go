package runtime

import "github.com/raillang/railway/internal/ast"

// ModuleEnv pairs a parsed module's AST with its evaluated globals frame.
// Building the AST (tokenizing, parsing, resolving imports from disk) is an
// external collaborator's job per spec.md §1/§4.9; the Registry only holds
// the already-assembled result.
type ModuleEnv struct {
	AST     *ast.Module
	Globals *Scope
}

// Registry is the runtime's view of every module reachable from main,
// keyed by module name (spec.md §3 "Module registry").
type Registry struct {
	Modules map[string]*ModuleEnv
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{Modules: make(map[string]*ModuleEnv)}
}

// Add registers env under its AST's module name.
func (r *Registry) Add(env *ModuleEnv) {
	r.Modules[env.AST.Name] = env
}

// Resolve resolves a possibly-empty module qualifier against the current
// module's import aliases, falling back to treating qualifier as a literal
// module name. An empty qualifier resolves to `current`.
func (r *Registry) Resolve(current *ast.Module, qualifier string) (*ModuleEnv, bool) {
	if qualifier == "" {
		env, ok := r.Modules[current.Name]
		return env, ok
	}
	if real, ok := current.Imports[qualifier]; ok {
		env, ok := r.Modules[real]
		return env, ok
	}
	env, ok := r.Modules[qualifier]
	return env, ok
}

// Function resolves a (module-qualifier, function-name) pair relative to
// the calling module.
func (r *Registry) Function(current *ast.Module, qualifier, name string) (*ast.Module, *ast.Function, bool) {
	env, ok := r.Resolve(current, qualifier)
	if !ok {
		return nil, nil, false
	}
	fn, ok := env.AST.Functions[name]
	if !ok {
		return nil, nil, false
	}
	return env.AST, fn, true
}
