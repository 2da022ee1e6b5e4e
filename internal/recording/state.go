// package recording drives a lecture capture session: audio, live transcript and upload
package recording

import (
	"fmt"

	"github.com/desertthunder/lectern/internal/shared"
)

// State is where a recording session is in its lifecycle.
type State int

const (
	Idle State = iota
	Recording
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action moves a session between states.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionStop   Action = "stop"
)

var transitions = map[State]map[Action]State{
	Idle:      {ActionStart: Recording},
	Recording: {ActionPause: Paused, ActionStop: Stopped},
	Paused:    {ActionResume: Recording, ActionStop: Stopped},
	Stopped:   {ActionStart: Recording},
}

// Next returns the state reached by applying action to from.
func Next(from State, action Action) (State, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: cannot %s while %s", shared.ErrInvalidTransition, action, from)
}
