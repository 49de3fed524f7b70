package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/roadlink/game/engine"
)

// Generation failures. The generator never retries; callers match these with
// errors.Is and reseed.
var (
	ErrInvalidConfig       = errors.New("invalid generator config")
	ErrPlacementExhausted  = errors.New("placement exhausted")
	ErrPathTooShort        = errors.New("path too short")
	ErrDanglingOpening     = errors.New("dangling opening")
	ErrUnreachableLandmark = errors.New("unreachable landmark")
	ErrOrphanedTile        = errors.New("tile cannot reach the turnpike")
)

// Defect is one opening that does not lead into a matching neighbor
type Defect struct {
	Position  engine.Position  `json:"position"`
	Direction engine.Direction `json:"direction"`
	Reason    string           `json:"reason"`
}

func (d Defect) String() string {
	return fmt.Sprintf("%v %s: %s", d.Position, d.Direction, d.Reason)
}

// DanglingOpeningError lists every dangling opening found in one pass
type DanglingOpeningError struct {
	Defects []Defect
}

func (e *DanglingOpeningError) Error() string {
	parts := make([]string, len(e.Defects))
	for i, d := range e.Defects {
		parts[i] = d.String()
	}
	return fmt.Sprintf("%s: %d defect(s): %s", ErrDanglingOpening, len(e.Defects), strings.Join(parts, "; "))
}

func (e *DanglingOpeningError) Unwrap() error {
	return ErrDanglingOpening
}
