package simulator

import (
	"math/rand"
	"time"
)

type Rand interface {
	Intn(n int) int
}

// ArrivalPolicy decides whether an order that has passed the last
// intermediate waypoint reaches its destination on this tick.
type ArrivalPolicy interface {
	Arrive() bool
}

const DefaultArrivalOneIn = 4

type RandomArrival struct {
	r     Rand
	oneIn int
}

// NewRandomArrival arrives with probability 1/oneIn. A nil r uses a
// time-seeded source; oneIn <= 0 falls back to DefaultArrivalOneIn.
func NewRandomArrival(r Rand, oneIn int) *RandomArrival {
	if oneIn <= 0 {
		oneIn = DefaultArrivalOneIn
	}
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomArrival{r: r, oneIn: oneIn}
}

func (a *RandomArrival) Arrive() bool {
	return a.r.Intn(a.oneIn) == 0
}

type AlwaysArrive struct{}

func (AlwaysArrive) Arrive() bool { return true }

type NeverArrive struct{}

func (NeverArrive) Arrive() bool { return false }
