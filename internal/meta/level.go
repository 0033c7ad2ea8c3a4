package meta

import (
	"errors"
	"fmt"
)

// ProcessingLevel is an ordinal tag describing how much transformation a
// column has undergone since ingestion.
type ProcessingLevel string

// Processing levels, ordered by rank.
const (
	// ProcessingRaw marks values published exactly as the producer released
	// them.
	ProcessingRaw ProcessingLevel = "raw"

	// ProcessingMinor marks values that underwent light, reversible
	// adjustments (renames, unit harmonization).
	ProcessingMinor ProcessingLevel = "minor"

	// ProcessingMajor marks derived values (aggregations, per-capita
	// conversions, cross-dataset combinations).
	ProcessingMajor ProcessingLevel = "major"
)

// ErrUnknownProcessingLevel is returned when a level outside the ordinal set
// is encountered. An unlisted level is a producer bug and fails fast rather
// than being silently dropped.
var ErrUnknownProcessingLevel = errors.New("unknown processing level")

// processingRanks orders the levels; combining columns takes the maximum.
var processingRanks = map[ProcessingLevel]int{
	ProcessingRaw:   0,
	ProcessingMinor: 1,
	ProcessingMajor: 2,
}

// Rank returns the ordinal rank of the level.
func (p ProcessingLevel) Rank() (int, error) {
	rank, ok := processingRanks[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q (valid: raw, minor, major)", ErrUnknownProcessingLevel, p)
	}

	return rank, nil
}

// IsValid reports whether the level belongs to the ordinal set. The empty
// level means "not declared" and is not valid as a declared value.
func (p ProcessingLevel) IsValid() bool {
	_, ok := processingRanks[p]

	return ok
}

// MaxProcessingLevel returns the highest-ranked level among those given,
// skipping empty (undeclared) values. It returns the empty level when no
// operand declares one, and fails on any level outside the ordinal set.
func MaxProcessingLevel(levels ...ProcessingLevel) (ProcessingLevel, error) {
	var (
		best     ProcessingLevel
		bestRank = -1
	)

	for _, level := range levels {
		if level == "" {
			continue
		}

		rank, err := level.Rank()
		if err != nil {
			return "", err
		}

		if rank > bestRank {
			best, bestRank = level, rank
		}
	}

	return best, nil
}
