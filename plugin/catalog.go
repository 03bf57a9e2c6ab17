package plugin

// catalog lists the in-process plugins the CLI's -plugin flag and a
// config file's [plugins].load can name. Dynamic loading (a path to a
// shared object or WASM module) is out of scope — see DESIGN.md for why —
// so this closed set is the whole of what "loading a plugin" means here.
var catalog = map[string]func() Plugin{
	"life": func() Plugin { return Life{} },
}

// Lookup constructs the named catalog plugin, or reports ok=false if name
// is not registered.
func Lookup(name string) (Plugin, bool) {
	ctor, ok := catalog[name]
	if !ok {
		return nil, false
	}
	return ctor(), true
}
