package httpclient

import (
	"context"
	"net/http"

	"github.com/taskflow/client/internal/core/ports"
)

// State is a step of the per-request refresh-and-retry state machine.
//
//	Initial → Sent → {Success | Failed | AuthFailure}
//	AuthFailure → RefreshAttempted → {RetriedSuccess | RetriedFailure | RefreshDenied}
type State int

const (
	StateInitial State = iota
	StateSent
	StateSuccess
	StateFailed
	StateAuthFailure
	StateRefreshAttempted
	StateRetriedSuccess
	StateRetriedFailure
	StateRefreshDenied
)

var stateNames = [...]string{
	StateInitial:          "initial",
	StateSent:             "sent",
	StateSuccess:          "success",
	StateFailed:           "failed",
	StateAuthFailure:      "auth_failure",
	StateRefreshAttempted: "refresh_attempted",
	StateRetriedSuccess:   "retried_success",
	StateRetriedFailure:   "retried_failure",
	StateRefreshDenied:    "refresh_denied",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateFailed, StateRetriedSuccess, StateRetriedFailure, StateRefreshDenied:
		return true
	}
	return false
}

// attempt is an immutable record of one dispatch of a request. A new value is
// produced for the resubmission; the original is never mutated.
type attempt struct {
	retried bool
	bearer  string
}

func (a attempt) retry(bearer string) attempt {
	return attempt{retried: true, bearer: bearer}
}

type (
	// sendFunc performs one exchange. It returns an error only when no
	// response was received.
	sendFunc func(ctx context.Context, a attempt) (*ports.Response, error)
	// refreshFunc obtains a new access token or fails with ErrAuthExpired.
	refreshFunc func(ctx context.Context) (string, error)
	// observeFunc is told about every state the policy enters.
	observeFunc func(State)
)

// policy composes the single-retry refresh protocol around a transport call.
type policy struct {
	send        sendFunc
	refresh     refreshFunc
	refreshable bool
	observe     observeFunc
}

// run drives one request to a terminal state. Non-2xx responses are returned
// together with their *domain.APIError.
func (p policy) run(ctx context.Context, a attempt) (*ports.Response, State, error) {
	p.enter(StateInitial)
	for {
		resp, err := p.send(ctx, a)
		p.enter(StateSent)
		if err != nil {
			return nil, p.settleFailure(a), err
		}

		if resp.StatusCode != http.StatusUnauthorized || !p.refreshable || a.retried {
			return p.settle(a, resp)
		}

		p.enter(StateAuthFailure)
		p.enter(StateRefreshAttempted)
		token, err := p.refresh(ctx)
		if err != nil {
			p.enter(StateRefreshDenied)
			return nil, StateRefreshDenied, err
		}
		a = a.retry(token)
	}
}

func (p policy) settle(a attempt, resp *ports.Response) (*ports.Response, State, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		state := StateSuccess
		if a.retried {
			state = StateRetriedSuccess
		}
		p.enter(state)
		return resp, state, nil
	}
	return resp, p.settleFailure(a), responseError(resp)
}

func (p policy) settleFailure(a attempt) State {
	state := StateFailed
	if a.retried {
		state = StateRetriedFailure
	}
	p.enter(state)
	return state
}

func (p policy) enter(s State) {
	if p.observe != nil {
		p.observe(s)
	}
}
