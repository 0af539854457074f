package dispatch

import (
	"context"
	"fmt"

	"code-analyzer-be/pkg/agent/state"
)

// Handler is a named conversation agent. Handle receives the current
// conversation value and returns the updated one; control always goes
// back to the dispatcher afterwards.
type Handler interface {
	Name() string
	Handle(ctx context.Context, conv state.Conversation) (state.Conversation, error)
}

// UnknownHandlerError reports a hand-off to a name that was never
// registered.
type UnknownHandlerError struct {
	Name string
}

func (e *UnknownHandlerError) Error() string {
	return fmt.Sprintf("unknown handler %q", e.Name)
}

// Registry is a closed set of handlers fixed at construction.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	m := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		m[h.Name()] = h
	}
	return &Registry{handlers: m}
}

// Resolve looks a handler up by exact name.
func (r *Registry) Resolve(name string) (Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, &UnknownHandlerError{Name: name}
	}
	return h, nil
}
