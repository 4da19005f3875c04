package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const peacefulNightMessage = "The night was peaceful. Nobody died."

var titleCaser = cases.Title(language.English)

// causeLabels maps internal death causes to what the game master reads
// out loud.
var causeLabels = map[string]string{
	"bite":      "was torn apart by werewolves",
	"poison":    "was found poisoned",
	"execution": "was executed by the village",
	"heartache": "died of a broken heart",
	"twin_bond": "followed their twin into death",
}

func deathMessage(d DeathRecord) string {
	label, ok := causeLabels[d.Cause]
	if !ok {
		label = "was found dead"
	}
	return titleCaser.String(d.Name) + " " + label + "."
}

func saveMessage(s SaveRecord) string {
	labels := make([]string, len(s.Reasons))
	for i, r := range s.Reasons {
		labels[i] = titleCaser.String(r)
	}
	return titleCaser.String(s.Name) + " was attacked but survived (" + strings.Join(labels, ", ") + ")."
}

// deflectMessage announces a save that stopped the werewolves but not the
// death itself: the player was bitten and shielded, yet died of poison.
func deflectMessage(s SaveRecord) string {
	labels := make([]string, len(s.Reasons))
	for i, r := range s.Reasons {
		labels[i] = titleCaser.String(r)
	}
	return titleCaser.String(s.Name) + " was shielded from the werewolves (" + strings.Join(labels, ", ") + "), but it could not stop the poison."
}
