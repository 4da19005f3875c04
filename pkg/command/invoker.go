package command

import (
	"fmt"

	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

// Invoker is the linear command history of one session. It owns the
// current game state (single writer) and gives standard undo/redo with
// branch discard: executing a new command after an undo drops the redo
// tail.
type Invoker struct {
	initial   state.GameState
	current   state.GameState
	commands  []Command
	snapshots []state.GameState // state after commands[i]
	index     int               // -1 means "at the initial state"
}

// NewInvoker starts an empty history at the given initial state.
func NewInvoker(initial state.GameState) *Invoker {
	return &Invoker{
		initial: initial,
		current: initial,
		index:   -1,
	}
}

// State returns the current game state.
func (inv *Invoker) State() state.GameState {
	return inv.current
}

// Initial returns the state the history started from.
func (inv *Invoker) Initial() state.GameState {
	return inv.initial
}

// Execute runs cmd against the current state. A command whose validation
// fails is rejected with the history untouched. On success any redo tail
// is discarded, the command is appended and the state advances.
func (inv *Invoker) Execute(cmd Command) Result {
	res := cmd.Execute(inv.current)
	if !res.Success {
		return res
	}

	inv.commands = append(inv.commands[:inv.index+1], cmd)
	inv.snapshots = append(inv.snapshots[:inv.index+1], res.State)
	inv.index++
	inv.current = res.State
	return res
}

// Undo reverses the most recent applied command.
func (inv *Invoker) Undo() Result {
	if inv.index < 0 {
		return Result{State: inv.current, Message: "nothing to undo"}
	}

	res := inv.commands[inv.index].Undo(inv.current)
	if !res.Success {
		return res
	}
	inv.index--
	inv.current = res.State
	return res
}

// Redo re-executes the next command in the history. The index only
// advances if the re-execution succeeds, so a command made illegal by
// intervening changes is not silently replayed.
func (inv *Invoker) Redo() Result {
	if inv.index >= len(inv.commands)-1 {
		return Result{State: inv.current, Message: "nothing to redo"}
	}

	cmd := inv.commands[inv.index+1]
	res := cmd.Execute(inv.current)
	if !res.Success {
		return res
	}
	inv.index++
	// a restored redo tail has no snapshots yet
	if inv.index < len(inv.snapshots) {
		inv.snapshots[inv.index] = res.State
	} else {
		inv.snapshots = append(inv.snapshots, res.State)
	}
	inv.current = res.State
	return res
}

// CanUndo reports whether at least one applied command remains.
func (inv *Invoker) CanUndo() bool {
	return inv.index >= 0
}

// CanRedo reports whether an undone command is available for replay.
func (inv *Invoker) CanRedo() bool {
	return inv.index < len(inv.commands)-1
}

// Index returns the position of the last applied command, -1 when the
// history is fully undone.
func (inv *Invoker) Index() int {
	return inv.index
}

// History returns descriptors for the full command list, redo tail
// included.
func (inv *Invoker) History() []Descriptor {
	out := make([]Descriptor, len(inv.commands))
	for i, c := range inv.commands {
		out[i] = Describe(c)
	}
	return out
}

// Applied returns descriptors for the commands currently in effect.
func (inv *Invoker) Applied() []Descriptor {
	return inv.History()[:inv.index+1]
}

// ByActor filters the applied history down to one actor's commands.
func (inv *Invoker) ByActor(actorID string) []Descriptor {
	var out []Descriptor
	for _, d := range inv.Applied() {
		if d.ActorID == actorID {
			out = append(out, d)
		}
	}
	return out
}

// ByRole filters the applied history down to one role's commands.
func (inv *Invoker) ByRole(roleID string) []Descriptor {
	var out []Descriptor
	for _, d := range inv.Applied() {
		if d.RoleID == roleID {
			out = append(out, d)
		}
	}
	return out
}

// Restore rebuilds the history from a snapshot import: commands up to and
// including index are replayed against the initial state, the rest become
// the redo tail. Since commands are deterministic the replay reproduces
// the exact pre-snapshot state, undo/redo availability included.
func (inv *Invoker) Restore(cmds []Command, index int) error {
	if index < -1 || index >= len(cmds) {
		return fmt.Errorf("history index %d out of range for %d commands", index, len(cmds))
	}
	for i := 0; i <= index; i++ {
		if res := inv.Execute(cmds[i]); !res.Success {
			return fmt.Errorf("history replay failed at command %d: %s", i, res.Message)
		}
	}
	// the redo tail gets no snapshots: its commands have not executed in
	// this process, and Redo records a snapshot when they do
	inv.commands = append(inv.commands, cmds[index+1:]...)
	return nil
}

// StateAt returns the snapshot recorded after the i-th command. ok is
// false for commands that have never executed in this process, such as a
// restored redo tail.
func (inv *Invoker) StateAt(i int) (state.GameState, bool) {
	if i < 0 || i >= len(inv.snapshots) {
		return state.GameState{}, false
	}
	return inv.snapshots[i], true
}
