package dialogue

import "context"

// maxTransitions bounds how many steps one utterance may advance through.
// The longest legitimate chain is ASK_TIME -> ASK_NAME -> CREATE_RES.
const maxTransitions = 8

// stepHandler handles the current step. It returns the reply to speak, or
// next=true after moving the session to a step that should run on the
// same utterance.
type stepHandler func(ctx context.Context, tc *turn) (reply string, next bool)

// flow is a slot-filling state machine over conversation turns.
type flow struct {
	intent IntentType
	start  func(ctx context.Context, tc *turn) string
	steps  map[Step]stepHandler
}

// run enters f if it is not already active, otherwise trampolines through
// its steps until one produces a reply.
func (a *Agent) run(ctx context.Context, f flow, tc *turn) string {
	s := tc.session
	if s.CurrentIntent != f.intent || s.Step == StepNone {
		return f.start(ctx, tc)
	}

	for i := 0; i < maxTransitions; i++ {
		h, ok := f.steps[s.Step]
		if !ok {
			break
		}
		reply, next := h(ctx, tc)
		if !next {
			return reply
		}
	}

	a.log.Error().
		Str("caller", tc.callerKey).
		Str("flow", string(f.intent)).
		Str("step", string(s.Step)).
		Msg("flow stuck, restarting")
	return f.start(ctx, tc)
}
