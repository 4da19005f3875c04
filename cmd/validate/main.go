package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <scenario.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &ScenarioValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Scenario file is valid!")
}

type ScenarioValidator struct {
	errors []string
}

func (v *ScenarioValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("scenario file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidScenarioName(nameWithoutExt) {
		return fmt.Errorf("scenario filename '%s' must be lowercase snake_case (e.g., classic_village.json, not Classic-Village.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var s scenario.Scenario
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&s); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := s.Validate(); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.validateScenario(&s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validateScenario lints catalog content beyond the structural checks the
// engine enforces at load time.
func (v *ScenarioValidator) validateScenario(s *scenario.Scenario) {
	ordered := make(map[string]bool, len(s.FirstNightOrder)+len(s.NightOrder))
	for _, id := range s.FirstNightOrder {
		ordered[id] = true
	}
	laterOrdered := make(map[string]bool, len(s.NightOrder))
	for _, id := range s.NightOrder {
		ordered[id] = true
		laterOrdered[id] = true
	}

	for _, r := range s.Roles {
		v.validateIDFormat("role ID", r.ID)
		v.validateTeam(r.ID, "team", r.Team, false)
		v.validateTeam(r.ID, "apparent_team", r.ApparentTeam, true)
		v.validateWinCondition(r.ID, r.WinCondition)

		seenSkills := make(map[scenario.SkillType]bool, len(r.Skills))
		onlyFirstNight := len(r.Skills) > 0
		for _, sk := range r.Skills {
			if !isBuiltinSkill(sk.Type) {
				v.addError(fmt.Sprintf("role '%s' has non-builtin skill type '%s'; the engine rejects it unless a custom constructor is registered", r.ID, sk.Type))
			}
			if seenSkills[sk.Type] {
				v.addError(fmt.Sprintf("role '%s' declares skill '%s' twice", r.ID, sk.Type))
			}
			seenSkills[sk.Type] = true

			if sk.TargetCount <= 0 {
				v.addError(fmt.Sprintf("role '%s' skill '%s' must target at least one player", r.ID, sk.Type))
			}
			if !sk.FirstNightOnly {
				onlyFirstNight = false
			}
		}

		if onlyFirstNight && laterOrdered[r.ID] {
			v.addError(fmt.Sprintf("role '%s' only has first-night skills but appears in night_order", r.ID))
		}
		if len(r.Skills) > 0 && !ordered[r.ID] {
			v.addError(fmt.Sprintf("role '%s' has skills but appears in no calling order", r.ID))
		}
		if len(r.Skills) == 0 && ordered[r.ID] {
			v.addError(fmt.Sprintf("role '%s' has no skills but appears in a calling order", r.ID))
		}
	}
}

func (v *ScenarioValidator) validateIDFormat(idType, id string) {
	if !isValidScenarioName(id) {
		v.addError(fmt.Sprintf("%s '%s' must be lowercase snake_case", idType, id))
	}
}

func (v *ScenarioValidator) validateTeam(roleID, field string, team player.Team, allowEmpty bool) {
	if team == "" {
		if !allowEmpty {
			v.addError(fmt.Sprintf("role '%s' has empty %s", roleID, field))
		}
		return
	}
	switch team {
	case player.TeamVillager, player.TeamWerewolf, player.TeamVampire, player.TeamNeutral:
	default:
		v.addError(fmt.Sprintf("role '%s' has unknown %s '%s'", roleID, field, team))
	}
}

func (v *ScenarioValidator) validateWinCondition(roleID, wc string) {
	switch wc {
	case "", scenario.WinDieByExecution, scenario.WinMarkedAllDead, scenario.WinLoneWolf:
	default:
		v.addError(fmt.Sprintf("role '%s' has unknown win_condition '%s'", roleID, wc))
	}
}

func (v *ScenarioValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

func isValidScenarioName(name string) bool {
	return snakeCaseRe.MatchString(name)
}

func isBuiltinSkill(t scenario.SkillType) bool {
	switch t {
	case scenario.SkillKill, scenario.SkillProtect, scenario.SkillHeal,
		scenario.SkillPoison, scenario.SkillInvestigate, scenario.SkillBless,
		scenario.SkillLinkLovers, scenario.SkillRecruit, scenario.SkillMark:
		return true
	}
	return false
}
