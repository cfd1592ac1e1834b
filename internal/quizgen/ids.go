package quizgen

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

// IDSource assigns ids to questions that arrive without one.
type IDSource interface {
	NextID() int64
}

// ID strategies accepted by NewIDSource.
const (
	IDStrategyTime     = "time"
	IDStrategySequence = "sequence"
)

// NewIDSource returns the IDSource for a configured strategy name. An empty
// name selects the time-based strategy.
func NewIDSource(strategy string) (IDSource, error) {
	switch strategy {
	case "", IDStrategyTime:
		return NewTimeIDs(), nil
	case IDStrategySequence:
		return NewSequenceIDs(time.Now().UnixMilli()), nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}

// TimeIDs issues the current unix time in milliseconds plus a random
// offset in [0,999]. Ids are not guaranteed unique across rapid calls.
type TimeIDs struct {
	now func() time.Time
}

func NewTimeIDs() *TimeIDs {
	return &TimeIDs{now: time.Now}
}

func (t *TimeIDs) NextID() int64 {
	return t.now().UnixMilli() + rand.Int64N(1000)
}

// SequenceIDs issues strictly increasing ids, unique within a process.
type SequenceIDs struct {
	last atomic.Int64
}

// NewSequenceIDs starts the sequence just after start.
func NewSequenceIDs(start int64) *SequenceIDs {
	s := &SequenceIDs{}
	s.last.Store(start)
	return s
}

func (s *SequenceIDs) NextID() int64 {
	return s.last.Add(1)
}
