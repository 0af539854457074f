package runner

import (
	"context"
	"fmt"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/dispatch"
	"code-analyzer-be/pkg/agent/state"
)

// defaultHandOffBound caps handler hand-offs within one turn; a
// correctly configured registry never comes close.
const defaultHandOffBound = 8

// Runner drives one conversation turn: Route, then alternate handler
// and Route until the dispatcher signals the terminal sentinel.
type Runner struct {
	dispatcher *dispatch.Dispatcher
	logger     logger.ILogger
	handOffMax int
}

func NewRunner(dispatcher *dispatch.Dispatcher, log logger.ILogger) *Runner {
	return &Runner{
		dispatcher: dispatcher,
		logger:     log,
		handOffMax: defaultHandOffBound,
	}
}

// RunTurn executes one full turn over the conversation value and
// returns the updated value. On error the returned conversation is the
// zero value; the caller's pre-turn copy is untouched either way.
func (r *Runner) RunTurn(ctx context.Context, conv state.Conversation) (state.Conversation, error) {
	conv = conv.WithStep(0)

	for handOffs := 0; handOffs <= r.handOffMax; handOffs++ {
		decision, err := r.dispatcher.Route(ctx, conv)
		if err != nil {
			return state.Conversation{}, err
		}
		conv = decision.Conversation

		if decision.Next == dispatch.End {
			return conv, nil
		}

		handler, err := r.dispatcher.Registry().Resolve(decision.Next)
		if err != nil {
			return state.Conversation{}, err
		}

		r.logger.Debug("runner", "hand-off", map[string]interface{}{
			"thread_id": conv.ThreadID,
			"handler":   decision.Next,
		})

		conv, err = handler.Handle(ctx, conv)
		if err != nil {
			return state.Conversation{}, err
		}
	}

	return state.Conversation{}, fmt.Errorf("turn aborted: hand-off bound of %d exceeded", r.handOffMax)
}
