package mode

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/evidex/internal/domain"
)

// Mode selects how the semantic endpoint queries the index.
type Mode string

// Search mode constants.
const (
	// Semantic uses the index's semantic ranker with extractive captions.
	Semantic Mode = "semantic"
	// Vector embeds the query and runs nearest-neighbor search.
	Vector Mode = "vector"
)

// Parse maps a request value to a Mode, case-insensitively. The empty
// string defaults to Vector, matching clients that never send a type.
func Parse(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "":
		return Vector, nil
	case Semantic:
		return Semantic, nil
	case Vector:
		return Vector, nil
	}
	return "", fmt.Errorf("%w: invalid search type %q", domain.ErrInvalidRequest, s)
}
