package services

import "context"

// Pending is the completion of a mutation's persistence phase. The
// in-memory mutation is already applied when a Pending is returned;
// callers choose whether to await storage convergence or fire and
// forget. A persistence failure is only observable here.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolvedPending(err error) *Pending {
	p := newPending()
	p.complete(err)
	return p
}

func (p *Pending) complete(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once every persistence call of the operation settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the persistence phase settles or ctx expires.
// Waiting never cancels the persistence calls themselves; they always
// run to completion or failure.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the persistence outcome, or nil while still in flight.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}
