package bot

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/pinaki/internal/game"
)

// Kind selects a bot strategy by name.
type Kind string

const (
	KindHeuristic Kind = "heuristic"
	KindRandom    Kind = "random"
)

// New returns a fresh strategy of the given kind. seed only affects KindRandom.
func New(kind Kind, seed int64) (game.Strategy, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindHeuristic, "":
		return NewHeuristic(), nil
	case KindRandom:
		return NewRandom(seed), nil
	default:
		return nil, fmt.Errorf("unknown bot strategy: %q", kind)
	}
}

var (
	_ game.Strategy = (*Heuristic)(nil)
	_ game.Strategy = (*Random)(nil)
)
