package team

import (
	"fmt"
	"strings"

	"github.com/benvon/team-builder/internal/catalog"
	"github.com/benvon/team-builder/internal/models"
)

const customFormatDescription = "Custom format"

// BuildPrompt renders the user prompt for a team request. It is deterministic:
// the same request and catalog always produce the same text. Unknown playstyle
// ids are left out; an unknown format is passed through by id.
func BuildPrompt(req *models.TeamRequest, c *catalog.Catalog) string {
	formatName, formatDescription := req.BattleFormat, customFormatDescription
	if f, ok := c.Format(req.BattleFormat); ok {
		formatName, formatDescription = f.Name, f.Description
	}

	styles := make([]string, 0, len(req.Playstyles))
	for _, id := range req.Playstyles {
		if p, ok := c.Playstyle(id); ok {
			styles = append(styles, fmt.Sprintf("%s (%s)", p.Name, p.Description))
		}
	}

	var b strings.Builder
	b.WriteString("You are a competitive Pokemon team builder expert with access to complete Pokemon data. Generate a 6-Pokemon team for the following criteria:\n\n")
	fmt.Fprintf(&b, "Available Pokemon: %s\n", strings.Join(req.PokemonNames, ", "))
	fmt.Fprintf(&b, "Battle Format: %s - %s\n", formatName, formatDescription)
	fmt.Fprintf(&b, "Playstyles: %s\n\n", strings.Join(styles, ", "))
	b.WriteString(promptInstructions)
	return b.String()
}

const promptInstructions = `For each Pokemon in the user's list, you have access to all their data including:
- Base stats, types, abilities (including hidden abilities)
- Complete movepool and learnable moves
- Viable items and competitive builds
- Current meta viability and usage statistics
- Type effectiveness and team synergy

Please select exactly 6 Pokemon from ONLY the provided list, do not choose pokemon outside the list, and generate the team in Pokemon Showdown format with exact specifications:
- Complete movesets with 4 moves each
- Appropriate items for each Pokemon
- Optimal abilities (including hidden abilities if viable)
- Competitive EV spreads and natures
- Tera types for current generation formats (if applicable)
- IV specifications where relevant (0 Attack for special attackers)

Example format structure:
Ninetales @ Heat Rock
Ability: Drought
Shiny: Yes
Tera Type: Flying
EVs: 252 HP / 4 Def / 252 SpD
Sassy Nature
IVs: 0 Atk

- Nasty Plot
- Baton Pass
- Agility
- Flamethrower

Generate a balanced team that:
1. Has good type coverage and synergy
2. Implements the selected playstyles effectively
3. Is optimized for the chosen battle format
4. Has clear roles for each Pokemon (sweeper, wall, support, etc.)
5. Includes proper team building fundamentals

Provide your response in the following format:

TEAM:
[Complete Pokemon Showdown format text for all 6 Pokemon separated with newlines]

STRATEGY:
## Lead Pokemon
[Recommended lead Pokemon name, if doubles choose 2 leads]

## Team Overview
[Brief description of the team's core strategy and how it implements the selected playstyles]

## Win Conditions
- [Primary win condition 1]
- [Primary win condition 2] 

## Key Synergies
[Explain important Pokemon interactions and combos]

## Common Matchups
[Brief advice on how the team performs against common threats and strategies]

## Gameplay Tips
- [Specific tip 1 for playing this team effectively]
- [Specific tip 2 for playing this team effectively]
- [Specific tip 3 for playing this team effectively]
- [Specific tip 4 for playing this team effectively]

Be sure to double check all pokemon are from ONLY the provided list, and that the team is legal and complete with no missing moves, items, or abilities.`
