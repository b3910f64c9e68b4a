package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// interruptCanceller turns the first SIGINT or SIGTERM into a cancel request
// for the job id handed to it. The job keeps running until the engine
// notices the request.
type interruptCanceller struct {
	ids  chan string
	sigs chan os.Signal
	done chan struct{}
}

func newInterruptCanceller(cancel func(id string)) *interruptCanceller {
	c := &interruptCanceller{
		ids:  make(chan string, 1),
		sigs: make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(c.sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		var id string
		select {
		case id = <-c.ids:
		case <-c.done:
			return
		}
		select {
		case sig := <-c.sigs:
			log.Info().Str("signal", sig.String()).Str("job_id", id).Msg("Cancelling job")
			cancel(id)
		case <-c.done:
		}
	}()
	return c
}

// SetID records the job to cancel. Only the first id is kept.
func (c *interruptCanceller) SetID(id string) {
	select {
	case c.ids <- id:
	default:
	}
}

// Stop releases the signal handler.
func (c *interruptCanceller) Stop() {
	signal.Stop(c.sigs)
	close(c.done)
}
