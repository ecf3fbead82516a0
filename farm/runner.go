/*
runner.go - Thread-safe access and scheduled stepping

PURPOSE:
  Simulation is single-threaded. Runner is the one place where
  concurrent callers (HTTP handlers, the cron scheduler) meet it: every
  access goes through one mutex, so a step is never observed half done.

SCHEDULING:
  Schedule registers a cron job (robfig/cron, seconds field enabled) that
  advances one step per tick. A failed step is logged and the schedule
  keeps going; the failing step did not advance the clock.

USAGE:
  runner := farm.NewRunner(sim)
  runner.Schedule("@every 10s")
  runner.Start()
  defer runner.Stop()

  runner.Do(func(sim *farm.Simulation) error {
      return sim.Run(ctx, 3)
  })

SEE ALSO:
  - simulation.go: What a step does
  - api/handlers.go: HTTP access through the runner
*/
package farm

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Runner serialises all access to a Simulation.
type Runner struct {
	sim  *Simulation
	mu   sync.Mutex
	cron *cron.Cron

	// OnStepError is called when a scheduled step fails. May be nil.
	OnStepError func(err error)
}

// NewRunner wraps sim.
func NewRunner(sim *Simulation) *Runner {
	return &Runner{
		sim:  sim,
		cron: cron.New(cron.WithSeconds()),
	}
}

// Do runs fn with exclusive access to the simulation.
func (r *Runner) Do(fn func(sim *Simulation) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.sim)
}

// Swap runs fn with exclusive access to the current simulation (nil if
// none) and installs the simulation fn returns. On error the current
// simulation stays. A scheduled step in progress finishes on the old one;
// the next one runs on the new one.
func (r *Runner) Swap(fn func(current *Simulation) (*Simulation, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := fn(r.sim)
	if err != nil {
		return err
	}
	r.sim = next
	return nil
}

// StepN advances n steps under the lock.
func (r *Runner) StepN(ctx context.Context, n int) error {
	return r.Do(func(sim *Simulation) error {
		return sim.Run(ctx, n)
	})
}

// Schedule registers a job that advances one step per cron tick.
func (r *Runner) Schedule(expr string) error {
	if _, err := r.cron.AddFunc(expr, r.scheduledStep); err != nil {
		return fmt.Errorf("register step schedule %q: %w", expr, err)
	}
	log.Printf("[Runner] Step schedule registered: %s", expr)
	return nil
}

// Start begins running scheduled steps.
func (r *Runner) Start() {
	r.cron.Start()
	log.Println("[Runner] Started")
}

// Stop stops the scheduler and waits for a running step to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	log.Println("[Runner] Stopped")
}

func (r *Runner) scheduledStep() {
	var step int
	err := r.Do(func(sim *Simulation) error {
		step = sim.Clock.Step()
		return sim.Step(context.Background())
	})
	if err != nil {
		log.Printf("[Runner] Step %d failed: %v", step, err)
		if r.OnStepError != nil {
			r.OnStepError(err)
		}
		return
	}
	log.Printf("[Runner] Step %d complete", step)
}
