package command

import (
	"fmt"

	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
)

// Constructor builds a command for a late-bound, data-driven skill type.
type Constructor func(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) (Command, error)

// Factory builds commands from skill types. The built-in skill set is
// dispatched exhaustively; Register adds constructors for skill types the
// engine does not know about. The factory holds an explicit catalog handle
// rather than reaching for global state.
type Factory struct {
	catalog *scenario.Scenario
	custom  map[scenario.SkillType]Constructor
}

// NewFactory creates a factory bound to one scenario catalog.
func NewFactory(catalog *scenario.Scenario) *Factory {
	return &Factory{
		catalog: catalog,
		custom:  make(map[scenario.SkillType]Constructor),
	}
}

// Register installs a constructor for a custom skill type. Built-in skill
// types cannot be overridden.
func (f *Factory) Register(t scenario.SkillType, ctor Constructor) error {
	switch t {
	case scenario.SkillKill, scenario.SkillProtect, scenario.SkillHeal,
		scenario.SkillPoison, scenario.SkillInvestigate, scenario.SkillBless,
		scenario.SkillLinkLovers, scenario.SkillRecruit, scenario.SkillMark:
		return fmt.Errorf("skill type %q is built in", t)
	}
	f.custom[t] = ctor
	return nil
}

// New builds the command for one role's night action. The role must carry
// a skill of the given type.
func (f *Factory) New(skill scenario.SkillType, actorID string, targetIDs []string, role scenario.Role) (Command, error) {
	spec, ok := role.SkillOf(skill)
	if !ok {
		return nil, fmt.Errorf("role %q has no %q skill", role.ID, skill)
	}

	switch skill {
	case scenario.SkillKill:
		return newKill(actorID, targetIDs, role, spec), nil
	case scenario.SkillProtect:
		return newProtect(actorID, targetIDs, role, spec), nil
	case scenario.SkillHeal:
		return newHeal(actorID, targetIDs, role, spec), nil
	case scenario.SkillPoison:
		return newPoison(actorID, targetIDs, role, spec), nil
	case scenario.SkillInvestigate:
		return newInvestigate(actorID, targetIDs, role, spec, f.catalog), nil
	case scenario.SkillBless:
		return newBless(actorID, targetIDs, role, spec), nil
	case scenario.SkillLinkLovers:
		return newLinkLovers(actorID, targetIDs, role, spec), nil
	case scenario.SkillRecruit:
		return newRecruit(actorID, targetIDs, role, spec), nil
	case scenario.SkillMark:
		return newMark(actorID, targetIDs, role, spec), nil
	}

	if ctor, ok := f.custom[skill]; ok {
		return ctor(actorID, targetIDs, role, spec)
	}
	return nil, fmt.Errorf("unknown skill type %q", skill)
}

// FromDescriptor rebuilds a command from its serialized identity,
// preserving its original ID and timestamp. Used by snapshot import.
func (f *Factory) FromDescriptor(d Descriptor) (Command, error) {
	role, ok := f.catalog.Role(d.RoleID)
	if !ok {
		return nil, fmt.Errorf("unknown role %q in command %s", d.RoleID, d.ID)
	}
	cmd, err := f.New(d.Skill, d.ActorID, d.TargetIDs, role)
	if err != nil {
		return nil, err
	}
	if withIdentity, ok := cmd.(interface{ setIdentity(Descriptor) }); ok {
		withIdentity.setIdentity(d)
	}
	return cmd, nil
}

func (b *base) setIdentity(d Descriptor) {
	b.id = d.ID
	b.createdAt = d.CreatedAt
}
