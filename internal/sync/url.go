package sync

import (
	"fmt"
	"regexp"
)

// arXiv-style identifiers: four digits, a dot, then four or five digits.
var paperIDPattern = regexp.MustCompile(`(\d{4}\.\d{4,5})`)

// DerivePDFURL maps a canonical entry URL onto its PDF asset. When the URL
// carries no recognizable identifier the source URL is returned unchanged,
// so callers always get a usable link.
func DerivePDFURL(sourceURL string) string {
	m := paperIDPattern.FindStringSubmatch(sourceURL)
	if m == nil {
		return sourceURL
	}
	return fmt.Sprintf("https://arxiv.org/pdf/%s", m[1])
}
