package sync

import "strings"

// Tier score ceilings. A tier is only scanned while the running score is
// still below its ceiling, so keywords from tiers that were never reached
// do not appear in the matched set.
const (
	scoreHigh   = 5
	scoreMedium = 3
	scoreLow    = 2
	scoreFloor  = 1
)

// Score maps an item's text to a relevance score in [1,5] and the set of
// keywords that matched during the scan. It is pure and total: empty tiers
// and empty text yield the floor score with no matches.
func Score(title, abstract string, tiers KeywordTiers) (int, []string) {
	text := strings.ToLower(title + " " + abstract)
	score := scoreFloor
	var matched []string

	scan := func(keywords []string, tierScore int) {
		hit := false
		for _, kw := range keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(kw)) {
				matched = append(matched, kw)
				hit = true
			}
		}
		if hit && tierScore > score {
			score = tierScore
		}
	}

	scan(tiers.High, scoreHigh)
	if score < scoreHigh {
		scan(tiers.Medium, scoreMedium)
	}
	if score < scoreMedium {
		scan(tiers.Low, scoreLow)
	}
	return score, matched
}
