package session

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// router sends interrupt signals to whatever is running. SIGINT during
// playback stops only the stream; any other signal ends the session.
type router struct {
	mu      sync.Mutex
	session context.CancelFunc
	play    context.CancelFunc
}

func newRouter(cancel context.CancelFunc) *router {
	return &router{session: cancel}
}

func (r *router) setPlay(cancel context.CancelFunc) {
	r.mu.Lock()
	r.play = cancel
	r.mu.Unlock()
}

func (r *router) handle(sig os.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sig == os.Interrupt && r.play != nil {
		log.Debug().Msg("Interrupt during playback, stopping stream")
		r.play()
		r.play = nil
		return
	}
	log.Debug().Str("signal", sig.String()).Msg("Ending session")
	r.session()
}

func (r *router) listen(signals <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case sig := <-signals:
			r.handle(sig)
		case <-done:
			return
		}
	}
}
