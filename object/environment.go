package object

// Environment defines the bindings that associate names to values in the
// tree-walking engine. Environments nest: a lookup that misses the local
// bindings continues through the outer chain, while writes always land in
// the innermost scope. References only ever point from inner environments
// outward, so the binding graph is acyclic.
type Environment struct {
	values map[string]Object
	outer  *Environment
}

// MakeEnvironment initializes an empty top level environment.
func MakeEnvironment() *Environment {
	return &Environment{
		values: make(map[string]Object),
	}
}

// MakeNestedEnvironment initializes an environment whose lookups fall
// through to the provided outer environment. Function calls use this to
// extend the function's captured environment with parameter bindings.
func MakeNestedEnvironment(outer *Environment) *Environment {
	env := MakeEnvironment()
	env.outer = outer
	return env
}

// Get retrieves the value bound to a name, searching this scope and then
// the outer chain.
func (env *Environment) Get(name string) (Object, bool) {
	value, ok := env.values[name]
	if !ok && env.outer != nil {
		return env.outer.Get(name)
	}
	return value, ok
}

// Set binds a value to a name in this scope only.
func (env *Environment) Set(name string, value Object) Object {
	env.values[name] = value
	return value
}
