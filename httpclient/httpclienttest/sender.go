// Package httpclienttest provides a scripted httpclient.Sender for tests.
//
//	sender := httpclienttest.New(
//	    httpclienttest.Fail(errors.New("refused")),
//	    httpclienttest.Respond(200, `{"ok":true}`),
//	)
//	svc := httpclient.NewService(sender)
package httpclienttest

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/hurl/domain"
)

// Step is one scripted outcome.
type Step struct {
	Response domain.Response
	Err      error
	// Delay is waited before the outcome is returned.
	Delay time.Duration
}

// Respond returns a step that answers with status and body.
func Respond(status int, body string) Step {
	return Step{Response: domain.Response{Status: status, Body: body}}
}

// Fail returns a step that fails with err.
func Fail(err error) Step {
	return Step{Err: err}
}

// After returns a copy of s that waits d first.
func (s Step) After(d time.Duration) Step {
	s.Delay = d
	return s
}

// HandlerFunc computes an outcome from the request.
type HandlerFunc func(ctx context.Context, req domain.Request) Step

// Sender replays steps in call order, repeating the last one once the
// script runs out. A Handler, when set, is used instead of the script.
// It records every request it receives and is safe for concurrent use.
type Sender struct {
	Handler HandlerFunc

	mu          sync.Mutex
	steps       []Step
	requests    []domain.Request
	inFlight    int
	maxInFlight int
}

// New returns a Sender that replays steps. With no steps it answers 200
// with an empty body.
func New(steps ...Step) *Sender {
	return &Sender{steps: steps}
}

// NewHandler returns a Sender driven by h.
func NewHandler(h HandlerFunc) *Sender {
	return &Sender{Handler: h}
}

// Send records req and returns the next scripted outcome.
func (s *Sender) Send(ctx context.Context, req domain.Request) (domain.Response, error) {
	s.mu.Lock()
	call := len(s.requests)
	s.requests = append(s.requests, req)
	s.inFlight++
	s.maxInFlight = max(s.maxInFlight, s.inFlight)
	step := s.stepLocked(call)
	handler := s.Handler
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if handler != nil {
		step = handler(ctx, req)
	}
	if step.Delay > 0 {
		timer := time.NewTimer(step.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Response{}, ctx.Err()
		case <-timer.C:
		}
	}
	if step.Err != nil {
		return domain.Response{}, step.Err
	}
	return step.Response, nil
}

func (s *Sender) stepLocked(call int) Step {
	switch {
	case len(s.steps) == 0:
		return Respond(200, "")
	case call < len(s.steps):
		return s.steps[call]
	default:
		return s.steps[len(s.steps)-1]
	}
}

// Calls returns how many times Send was called.
func (s *Sender) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns the received requests in call order.
func (s *Sender) Requests() []domain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// MaxInFlight returns the highest number of concurrent Send calls seen.
func (s *Sender) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInFlight
}
