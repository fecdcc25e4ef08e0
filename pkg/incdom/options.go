package incdom

import "log/slog"

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger. Default: slog.Default() with component=incdom.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver registers an observer for every mutation the Patcher makes.
func WithObserver(o Observer) Option {
	return func(p *Patcher) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// WithAssertions turns protocol checks on or off. Default: on.
// Keyed tag mismatches are reported either way.
func WithAssertions(enabled bool) Option {
	return func(p *Patcher) {
		p.assert.enabled = enabled
	}
}

// WithAttributeMutator installs a custom mutator for one attribute name.
func WithAttributeMutator(name string, m AttrMutator) Option {
	return func(p *Patcher) {
		if m == nil {
			delete(p.mutators, name)
			return
		}
		p.mutators[name] = m
	}
}

// WithStore makes the Patcher use an existing NodeData store, so several
// patchers can share the records of one tree.
func WithStore(s *Store) Option {
	return func(p *Patcher) {
		if s != nil {
			p.store = s
		}
	}
}
