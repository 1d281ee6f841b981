// Package directory implements the name-keyed agent directory that lets one
// agent find and invoke another. A Directory is constructed once per scenario
// and passed explicitly to every component that needs peer lookup.
//
// The directory holds non-owning references: it never runs or cleans up an
// agent on behalf of its owner and never evicts entries on its own.
package directory

import (
	"sync"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// Entry is a snapshot of a registered agent used to advertise peers.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Options configures a Directory.
type Options struct {
	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Directory maps agent names to agents. It is safe for concurrent use.
type Directory struct {
	mu     sync.RWMutex
	agents map[string]core.Agent
	order  []string // first-registration order
	logger logging.Logger
}

// New creates an empty directory.
func New(optFns ...func(o *Options)) *Directory {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Directory{agents: make(map[string]core.Agent), logger: opts.Logger}
}

// Register inserts a under its name. A previous registration under the same
// name is replaced (last write wins) and keeps its position in List.
func (d *Directory) Register(a core.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := a.Name()
	if prev, exists := d.agents[name]; exists {
		if prev != a {
			d.logger.Warn("directory.register.replaced", "agent", name)
		}
	} else {
		d.order = append(d.order, name)
	}
	d.agents[name] = a
	d.logger.Debug("directory.register", "agent", name)
}

// Get returns the agent registered under name. The boolean is false when no
// such agent exists.
func (d *Directory) Get(name string) (core.Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agents[name]
	return a, ok
}

// Unregister removes name from the directory and reports whether it was present.
func (d *Directory) Unregister(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.agents[name]; !ok {
		return false
	}
	delete(d.agents, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns a snapshot of every registered agent in registration order.
func (d *Directory) List() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entries := make([]Entry, 0, len(d.order))
	for _, name := range d.order {
		a := d.agents[name]
		entries = append(entries, Entry{Name: name, Description: a.Description()})
	}
	return entries
}

// Agents returns the registered agents in registration order.
func (d *Directory) Agents() []core.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]core.Agent, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.agents[name])
	}
	return out
}

// Len returns the number of registered agents.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.agents)
}
