package drafts

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Sweepable is implemented by stores that need periodic expiry.
type Sweepable interface {
	Sweep() int
}

// Sweeper runs Sweep on a cron schedule (seconds field enabled).
type Sweeper struct {
	cron *cron.Cron
}

func NewSweeper(store Sweepable, schedule string) (*Sweeper, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(schedule, func() {
		if n := store.Sweep(); n > 0 {
			log.Printf("[info] operation=drafts.sweep removed=%d", n)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Sweeper{cron: c}, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
	log.Println("Draft sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
