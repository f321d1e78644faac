package search

import (
	"fmt"
	"strings"
)

const ResultsPrefix = "I couldn't answer confidently, so I searched the web for you:"

// FormatResults renders results as a numbered markdown list under ResultsPrefix.
func FormatResults(results []Result) string {
	items := make([]string, 0, len(results))
	for i, r := range results {
		items = append(items, fmt.Sprintf("%d. [%s](%s)\n%s", i+1, r.Title, r.URL, r.Snippet))
	}
	return ResultsPrefix + "\n\n" + strings.Join(items, "\n\n")
}
