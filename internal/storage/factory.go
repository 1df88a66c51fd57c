package storage

import "fmt"

// Opener constructs an Engine from a Config; each backend package
// registers its constructor via Register so this package never imports
// the backend packages directly (they import it).
type Opener func(Config) (Engine, error)

var openers = make(map[string]Opener)

// Register associates backend name with an Opener. Backend packages
// call this from an init() func.
func Register(name string, open func(Config) (Engine, error)) {
	openers[name] = open
}

// Open constructs the Engine registered under name (spec §4.8 "the
// factory selects the backend by a configuration tag").
func Open(name string, cfg Config) (Engine, error) {
	open, ok := openers[name]
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend %q", name)
	}
	return open(cfg)
}
