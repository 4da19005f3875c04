package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// playerColors is the display palette assigned round-robin at setup.
var playerColors = []string{
	"red", "blue", "green", "yellow", "purple", "orange",
	"teal", "pink", "brown", "gray", "lime", "navy",
}

// Session is the game master's handle on one running game. It owns the
// scenario catalog, the command factory and a single invoker carrying the
// whole game's command history. All methods are synchronous; callers
// serialize access.
type Session struct {
	catalog *scenario.Scenario
	factory *command.Factory
	inv     *command.Invoker
	pending []command.Command
	logger  *slog.Logger
}

// NewSession deals roles to the named players and opens night 1. Role
// assignment is the only randomness in the engine; every transform after
// this point is deterministic.
func NewSession(catalog *scenario.Scenario, playerNames []string, logger *slog.Logger) (*Session, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if len(playerNames) != catalog.PlayerCount {
		return nil, fmt.Errorf("scenario %q needs %d players, got %d",
			catalog.Name, catalog.PlayerCount, len(playerNames))
	}

	var deck []scenario.Role
	for _, r := range catalog.Roles {
		for i := 0; i < r.Quantity; i++ {
			deck = append(deck, r)
		}
	}
	rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	players := make([]player.Player, len(playerNames))
	for i, name := range playerNames {
		p := player.New(fmt.Sprintf("p%d", i+1), name, deck[i].ID, deck[i].Team, i)
		p = p.WithMeta(func(m *player.Metadata) {
			m.Color = playerColors[i%len(playerColors)]
		})
		players[i] = p
	}
	linkTwins(players)

	gs := state.NewGameState(catalog.FileName, players)
	logger.Info("Session created",
		"session_id", gs.ID, "scenario", catalog.Name, "players", len(players))

	return &Session{
		catalog: catalog,
		factory: command.NewFactory(catalog),
		inv:     command.NewInvoker(gs),
		logger:  logger,
	}, nil
}

// linkTwins pairs up players of a "twin" role at setup. Twins know each
// other from night 1 without a command.
func linkTwins(players []player.Player) {
	var twins []int
	for i, p := range players {
		if p.RoleID == "twin" {
			twins = append(twins, i)
		}
	}
	if len(twins) != 2 {
		return
	}
	a, b := twins[0], twins[1]
	link := func(i int, partnerID string) {
		players[i] = players[i].AddStatus(status.Twin).WithMeta(func(m *player.Metadata) {
			m.TwinPartnerID = partnerID
		})
	}
	link(a, players[b].ID)
	link(b, players[a].ID)
}

// State returns the current game state.
func (s *Session) State() state.GameState {
	return s.inv.State()
}

// Pending returns descriptors for the commands queued for the next
// resolution.
func (s *Session) Pending() []command.Descriptor {
	out := make([]command.Descriptor, len(s.pending))
	for i, c := range s.pending {
		out[i] = command.Describe(c)
	}
	return out
}

// Submit queues one role's night action. Validation that depends on
// execution order (a heal before the bite lands, a kill on a protected
// player) is deferred to ResolveNight; Submit only rejects what can never
// become legal: wrong phase, unknown actor, a role without the skill, a
// first-night skill after night 1, or a duplicate submission.
func (s *Session) Submit(skill scenario.SkillType, actorID string, targetIDs []string) command.Result {
	gs := s.inv.State()
	if gs.Phase != state.PhaseNight {
		return command.Result{State: gs, Message: "night actions can only be submitted at night"}
	}

	actor, ok := gs.Player(actorID)
	if !ok {
		return command.Result{State: gs, Message: fmt.Sprintf("actor %q not found", actorID)}
	}
	role, ok := s.catalog.Role(actor.RoleID)
	if !ok {
		return command.Result{State: gs, Message: fmt.Sprintf("role %q missing from the catalog", actor.RoleID)}
	}
	spec, ok := role.SkillOf(skill)
	if !ok {
		return command.Result{State: gs, Message: fmt.Sprintf("%s has no %s skill", role.Name, skill)}
	}
	if spec.FirstNightOnly && gs.Cycle > 1 {
		return command.Result{State: gs, Message: fmt.Sprintf("%s only acts on the first night", role.Name)}
	}
	// a role with several skills (the witch) may queue one action per
	// skill, but never the same skill twice
	for _, c := range s.pending {
		if c.ActorID() == actorID && c.Skill() == skill {
			return command.Result{State: gs, Message: actor.Name + " already has a pending " + string(skill) + " action"}
		}
	}

	cmd, err := s.factory.New(skill, actorID, targetIDs, role)
	if err != nil {
		return command.Result{State: gs, Message: err.Error()}
	}

	s.pending = append(s.pending, cmd)
	s.logger.Debug("Command queued",
		"session_id", gs.ID, "skill", skill, "actor", actorID, "targets", targetIDs)
	return command.Result{
		Success: true,
		State:   gs,
		Message: actor.Name + "'s action is queued for the night",
	}
}

// Unsubmit drops a queued action before resolution.
func (s *Session) Unsubmit(actorID string) bool {
	for i, c := range s.pending {
		if c.ActorID() == actorID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// ResolveNight runs the pending commands and the night closure through
// the command history and opens the day phase. The closure is a command
// like any other: Undo right after ResolveNight reopens the night, and
// further undos unwind the individual night actions.
func (s *Session) ResolveNight() (NightResult, error) {
	gs := s.inv.State()
	if gs.Phase != state.PhaseNight {
		return NightResult{}, fmt.Errorf("cannot resolve: session is in the %s phase", gs.Phase)
	}

	res := NewResolver(s.catalog, s.logger).Resolve(s.inv, s.pending, gs.Cycle)
	s.pending = nil
	return res, nil
}

// DayResult reports a day execution, cascade deaths included.
type DayResult struct {
	State    state.GameState `json:"state"`
	Deaths   []DeathRecord   `json:"deaths"`
	Messages []string        `json:"messages"`
}

// Execute carries out the day vote's verdict through the command history:
// the target is exiled and executed, lover/twin partners follow,
// day-transient flags are cleared and the next night opens. Undo rolls
// the verdict back.
func (s *Session) Execute(targetID string) (DayResult, error) {
	gs := s.inv.State()
	if gs.Phase != state.PhaseDay {
		return DayResult{}, fmt.Errorf("cannot execute: session is in the %s phase", gs.Phase)
	}
	target, ok := gs.Player(targetID)
	if !ok {
		return DayResult{}, fmt.Errorf("player %q not found", targetID)
	}
	if !target.IsAlive() {
		return DayResult{}, fmt.Errorf("%s is already dead", target.Name)
	}

	cmd := newVerdict(targetID)
	res := s.inv.Execute(cmd)
	if !res.Success {
		return DayResult{}, fmt.Errorf("%s", res.Message)
	}

	out := DayResult{State: res.State, Deaths: cmd.deaths}
	for _, d := range cmd.deaths {
		out.Messages = append(out.Messages, deathMessage(d))
	}
	s.logger.Info("Execution carried out",
		"session_id", res.State.ID, "target", targetID, "deaths", len(cmd.deaths))
	return out, nil
}

// Undo reverses the most recent step of the game, phase transitions
// included: right after ResolveNight it reopens the night, right after
// Execute it rolls back the verdict, and inside a reopened night it
// unwinds individual actions.
func (s *Session) Undo() command.Result {
	return s.inv.Undo()
}

// Redo replays the most recently undone step.
func (s *Session) Redo() command.Result {
	return s.inv.Redo()
}

// History exposes the game's command log, oldest first.
func (s *Session) History() []command.Descriptor {
	return s.inv.History()
}

// CanUndo reports whether the game has an applied command.
func (s *Session) CanUndo() bool { return s.inv.CanUndo() }

// CanRedo reports whether the game has an undone command.
func (s *Session) CanRedo() bool { return s.inv.CanRedo() }

// CheckWin evaluates the terminal conditions against the current state.
func (s *Session) CheckWin() WinResult {
	return CheckWinConditions(s.inv.State(), s.catalog)
}
