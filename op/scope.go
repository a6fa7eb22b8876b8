// scope.go - Scope fuer Benennung und Control-Dependencies von Operationen
// Ein Scope buendelt Environment, Namenspraefix und anstehende
// Control-Dependencies. Abgeleitete Op-Namen werden pro Scope eindeutig
// gemacht (Basisname, dann Basisname_1, Basisname_2, ...).
package op

import (
	"fmt"
	"slices"

	"github.com/7blacky7/tensorbind/ml"
)

// Scope is the construction context handed to every operator wrapper. Scopes
// are plain values without internal synchronization; concurrent use of one
// scope is the caller's responsibility to serialize.
type Scope struct {
	env         ml.Environment
	prefix      string
	controlDeps []ml.Operation
	names       *namer
}

// NewScope erstellt einen Root-Scope fuer das angegebene Environment.
func NewScope(env ml.Environment) *Scope {
	return &Scope{env: env, names: &namer{used: make(map[string]int)}}
}

// Env gibt das Environment dieses Scopes zurueck.
func (s *Scope) Env() ml.Environment {
	return s.env
}

// SubScope returns a child scope whose operation names are prefixed with the
// given name. The child name itself is uniquified against this scope.
func (s *Scope) SubScope(name string) *Scope {
	prefix := s.names.uniquify(s.join(name))
	return &Scope{
		env:         s.env,
		prefix:      prefix,
		controlDeps: slices.Clone(s.controlDeps),
		names:       &namer{used: make(map[string]int)},
	}
}

// WithControlDependencies returns a scope that attaches the given operations
// as control inputs to every operation built through it.
func (s *Scope) WithControlDependencies(ops ...ml.Operation) *Scope {
	deps := slices.Clone(s.controlDeps)
	deps = append(deps, ops...)
	return &Scope{env: s.env, prefix: s.prefix, controlDeps: deps, names: s.names}
}

// Builder starts an operation of the given kind under a name derived from the
// base label, with this scope's control dependencies already attached.
func (s *Scope) Builder(kind, base string) ml.OperationBuilder {
	b := s.env.OpBuilder(kind, s.opName(base))
	for _, dep := range s.controlDeps {
		b = b.AddControlInput(dep)
	}
	return b
}

func (s *Scope) opName(base string) string {
	return s.names.uniquify(s.join(base))
}

func (s *Scope) join(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// namer vergibt eindeutige Namen innerhalb eines Scopes.
type namer struct {
	used map[string]int
}

func (n *namer) uniquify(name string) string {
	count := n.used[name]
	n.used[name] = count + 1
	if count == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, count)
}
