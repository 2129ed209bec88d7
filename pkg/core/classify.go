package core

import "strings"

var collectionKeywords = []struct {
	collection Collection
	keywords   []string
}{
	{Strategic, []string{
		"decision", "strategy", "plan", "goal", "priority", "roadmap",
		"orchestrate", "coordinate", "vision", "objective", "direction",
		"architecture", "tradeoff", "risk", "milestone",
	}},
	{Technical, []string{
		"code", "api", "bug", "fix", "deploy", "build", "test", "database",
		"server", "endpoint", "function", "module", "package", "config",
		"typescript", "performance", "refactor", "migration", "debug",
	}},
	{Creative, []string{
		"design", "story", "art", "music", "lore", "narrative", "theme",
		"color", "style", "brand", "voice", "tone", "aesthetic", "inspire",
		"flow", "emotion", "create", "compose", "craft",
	}},
	{Operational, []string{
		"process", "workflow", "standard", "convention", "pipeline", "ci",
		"deploy", "monitor", "log", "metric", "sla", "incident", "runbook",
		"schedule", "integration", "release", "documentation",
	}},
	{Wisdom, []string{
		"learn", "insight", "pattern", "lesson", "retrospective", "reflect",
		"understand", "philosophy", "principle", "growth", "evolution",
		"knowledge", "teaching", "mentor", "transform",
	}},
}

// Classify picks a collection for content that arrived without one.
// A known entity maps to its default collection; otherwise every
// whitespace-separated word containing a collection keyword scores a point
// for that collection. Ties keep the earlier collection and no match yields
// Operational. Classification never selects Horizon from keywords.
func Classify(content, entity string) Collection {
	if e, ok := entityTable[entity]; ok {
		return e.collection
	}

	words := strings.Fields(strings.ToLower(content))
	best, bestScore := Operational, 0
	for _, ck := range collectionKeywords {
		score := 0
		for _, kw := range ck.keywords {
			for _, w := range words {
				if strings.Contains(w, kw) {
					score++
				}
			}
		}
		if score > bestScore {
			best, bestScore = ck.collection, score
		}
	}
	return best
}
