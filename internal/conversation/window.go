// ABOUTME: History windowing: selects the trailing turns sent as model context
// ABOUTME: Renders them as a "<Role>: <text>" transcript without touching the store
package conversation

import (
	"strings"

	"github.com/harper/clara/internal/models"
)

// DefaultWindow is the number of trailing turns included in each request
const DefaultWindow = 20

// Window returns the last w turns in their original order
func Window(turns []models.Turn, w int) []models.Turn {
	if w <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) <= w {
		return turns
	}
	return turns[len(turns)-w:]
}

// Transcript renders turns one per line as "<Role>: <text>"
func Transcript(turns []models.Turn) string {
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t.Role.Title())
		sb.WriteString(": ")
		sb.WriteString(t.Text)
	}
	return sb.String()
}
