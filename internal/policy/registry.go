package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/pkg/model"
)

// ErrUnknownPolicy is returned for a policy name with no registered factory.
var ErrUnknownPolicy = errors.New("unknown policy")

// DefaultOrder is the order in which a full simulation runs the policies.
var DefaultOrder = []model.PolicyKind{
	model.PolicyFCFS,
	model.PolicySJF,
	model.PolicyPriority,
	model.PolicyRR,
}

// Factory builds a fresh policy instance for one run.
type Factory func(quantum int) (Policy, error)

// Registry maps PolicyKind values to their factories.
// Registration happens at startup before concurrent access, so no mutex is needed.
type Registry struct {
	factories map[model.PolicyKind]Factory
	logger    *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		factories: make(map[model.PolicyKind]Factory),
		logger:    logging.OrDiscard(logger).With("component", "policy-registry"),
	}
}

// DefaultRegistry returns a Registry holding FCFS, SJF, Priority and RR.
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(model.PolicyFCFS, func(int) (Policy, error) { return NewFCFS(), nil })
	r.Register(model.PolicySJF, func(int) (Policy, error) { return NewSJF(), nil })
	r.Register(model.PolicyPriority, func(int) (Policy, error) { return NewPriority(), nil })
	r.Register(model.PolicyRR, func(q int) (Policy, error) {
		rr, err := NewRoundRobin(q)
		if err != nil {
			return nil, err
		}
		return rr, nil
	})
	return r
}

// Register adds a factory under kind, replacing any previous one.
func (r *Registry) Register(kind model.PolicyKind, f Factory) {
	r.factories[kind] = f
	r.logger.Debug("policy registered", "kind", kind)
}

// New builds a policy of the given kind.
func (r *Registry) New(kind model.PolicyKind, quantum int) (Policy, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, kind)
	}
	return f(quantum)
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind model.PolicyKind) bool {
	_, ok := r.factories[kind]
	return ok
}

var aliases = map[string]model.PolicyKind{
	"fcfs":        model.PolicyFCFS,
	"fifo":        model.PolicyFCFS,
	"sjf":         model.PolicySJF,
	"priority":    model.PolicyPriority,
	"prio":        model.PolicyPriority,
	"rr":          model.PolicyRR,
	"round-robin": model.PolicyRR,
	"roundrobin":  model.PolicyRR,
}

// ParseKinds converts policy names (comma-separated entries allowed) into
// kinds, keeping the given order and dropping duplicates. An empty input
// yields DefaultOrder.
func ParseKinds(names []string) ([]model.PolicyKind, error) {
	var kinds []model.PolicyKind
	seen := make(map[model.PolicyKind]bool)
	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			kind, ok := aliases[name]
			if !ok {
				return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, name)
			}
			if !seen[kind] {
				seen[kind] = true
				kinds = append(kinds, kind)
			}
		}
	}
	if len(kinds) == 0 {
		return append([]model.PolicyKind(nil), DefaultOrder...), nil
	}
	return kinds, nil
}
