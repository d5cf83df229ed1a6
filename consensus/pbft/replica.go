// Copyright 2019 The go-xgp Authors
// This file is part of the go-xgp library.
//
// The go-xgp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-xgp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-xgp library. If not, see <http://www.gnu.org/licenses/>.

// Package pbft implements the per-node replica of the three-phase
// Byzantine agreement protocol: pre-prepare, prepare, commit. Only the
// happy path and basic safety checks are covered; view changes are
// manual and carry no new-view proofs.
package pbft

import (
	"errors"
	"sync"

	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/metrics"
	"github.com/xugenping/go-xgp/security"
)

var logger = log.NewModuleLogger(log.ConsensusPBFT)

var (
	ErrNotPrimary        = errors.New("not primary node")
	ErrInvalidPrePrepare = errors.New("invalid pre-prepare message")
	ErrInvalidPrepare    = errors.New("invalid prepare message")
	ErrInvalidCommit     = errors.New("invalid commit message")
	ErrBlacklistedPeer   = errors.New("message from blacklisted peer")
	ErrUnknownMsgType    = errors.New("unknown message type")
)

var (
	// Metrics for the replica
	prePrepareCounter = metrics.NewRegisteredCounter("pbft/preprepare", nil)
	commitCounter     = metrics.NewRegisteredCounter("pbft/commit", nil)
	executedCounter   = metrics.NewRegisteredCounter("pbft/executed", nil)
	rejectedCounter   = metrics.NewRegisteredCounter("pbft/rejected", nil)
)

// Executor is called once a request gathers a commit quorum. The replica
// replies "success" when it returns nil.
type Executor func(req Request) error

// requestState tracks one in-flight request, keyed by its digest: the
// request body, the accepted pre-prepare, and the per-phase counters.
// The counters include the replica's own participation, so quorum is
// reached at 2f+1 with 2f messages from others.
type requestState struct {
	request      Request
	prePrepare   *Message
	prepareCount int
	commitCount  int
}

// Replica is the consensus state machine of a single node. All state is
// guarded by one mutex; phase transitions are atomic with respect to
// message arrival.
type Replica struct {
	mu sync.Mutex

	nodeID  string
	nodes   []string
	n       int
	f       int
	view    uint64
	seqNum  uint64
	primary string

	requests map[string]*requestState

	executor Executor
	guard    *security.PeerGuard
}

// NewReplica builds a replica for a fixed node set. The Byzantine
// tolerance is f = (n-1)/3 and the primary of view v is nodes[v mod n].
func NewReplica(nodeID string, nodes []string) *Replica {
	n := len(nodes)
	r := &Replica{
		nodeID:   nodeID,
		nodes:    append([]string{}, nodes...),
		n:        n,
		f:        (n - 1) / 3,
		requests: make(map[string]*requestState),
	}
	r.primary = r.nodes[int(r.view)%r.n]
	logger.Info("Initialized replica", "node", nodeID, "n", n, "f", r.f, "primary", r.primary)
	return r
}

// SetExecutor wires the commit-quorum callback, typically the chain's
// MinePending.
func (r *Replica) SetExecutor(exec Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executor = exec
}

// SetPeerGuard installs a blacklist consulted by FromPeer.
func (r *Replica) SetPeerGuard(guard *security.PeerGuard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guard = guard
}

// quorum is the 2f+1 threshold, counting the replica itself.
func (r *Replica) quorum() int {
	return 2*r.f + 1
}

// FromPeer dispatches a message received from an identified peer,
// rejecting blacklisted senders before any state change.
func (r *Replica) FromPeer(peer string, msg *Message) (*Message, error) {
	if r.guard != nil && r.guard.IsBlacklisted(peer) {
		rejectedCounter.Inc(1)
		return nil, ErrBlacklistedPeer
	}
	switch msg.Type {
	case MsgPrePrepare:
		return r.HandlePrePrepare(msg)
	case MsgPrepare:
		return r.HandlePrepare(msg)
	case MsgCommit:
		return r.HandleCommit(msg)
	default:
		return nil, ErrUnknownMsgType
	}
}

// HandleRequest accepts a client request on the primary, assigns the next
// sequence number and returns the PRE_PREPARE for broadcast. Backups
// reject with ErrNotPrimary.
func (r *Replica) HandleRequest(req Request) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nodeID != r.primary {
		rejectedCounter.Inc(1)
		return nil, ErrNotPrimary
	}
	digest, err := req.Digest()
	if err != nil {
		return nil, err
	}

	seq := r.seqNum
	r.seqNum++

	prePrepare := &Message{
		Type:      MsgPrePrepare,
		View:      r.view,
		SeqNum:    seq,
		RequestID: digest,
		Digest:    digest,
		Request:   req,
	}
	r.requests[digest] = &requestState{request: req, prePrepare: prePrepare}
	prePrepareCounter.Inc(1)
	logger.Info("Accepted request", "seq", seq, "digest", digest)
	return prePrepare, nil
}

// HandlePrePrepare runs on backups: after checking that the message's
// view maps to the current primary and that the digest matches the
// carried request, it logs the pre-prepare and answers with a PREPARE,
// counting its own prepare as the first.
func (r *Replica) HandlePrePrepare(msg *Message) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.verifyPrePrepare(msg); err != nil {
		rejectedCounter.Inc(1)
		return nil, err
	}

	state := &requestState{
		request:      msg.Request,
		prePrepare:   msg,
		prepareCount: 1,
	}
	r.requests[msg.RequestID] = state

	prepare := &Message{
		Type:      MsgPrepare,
		View:      r.view,
		SeqNum:    msg.SeqNum,
		RequestID: msg.RequestID,
		Digest:    msg.Digest,
	}
	return prepare, nil
}

// HandlePrepare counts a backup's PREPARE. When the counter reaches the
// quorum the replica broadcasts its COMMIT, self-counting it as the
// first. Past the threshold further prepares only bump the counter.
func (r *Replica) HandlePrepare(msg *Message) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.verifyPhase(msg)
	if err != nil {
		rejectedCounter.Inc(1)
		return nil, ErrInvalidPrepare
	}

	state.prepareCount++
	if state.prepareCount != r.quorum() {
		return nil, nil
	}

	commit := &Message{
		Type:      MsgCommit,
		View:      r.view,
		SeqNum:    msg.SeqNum,
		RequestID: msg.RequestID,
		Digest:    msg.Digest,
	}
	state.commitCount = 1
	commitCounter.Inc(1)
	return commit, nil
}

// HandleCommit counts a COMMIT; at quorum the request is executed and the
// REPLY returned.
func (r *Replica) HandleCommit(msg *Message) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.verifyPhase(msg)
	if err != nil {
		rejectedCounter.Inc(1)
		return nil, ErrInvalidCommit
	}

	state.commitCount++
	if state.commitCount != r.quorum() {
		return nil, nil
	}
	return r.executeRequest(msg.RequestID, state), nil
}

// verifyPrePrepare checks the pre-prepare against the current view's
// primary and re-derives the request digest.
func (r *Replica) verifyPrePrepare(msg *Message) error {
	if r.nodes[int(msg.View)%r.n] != r.primary {
		return ErrInvalidPrePrepare
	}
	digest, err := Request(msg.Request).Digest()
	if err != nil || digest != msg.Digest {
		return ErrInvalidPrePrepare
	}
	return nil
}

// verifyPhase checks a PREPARE or COMMIT against the logged pre-prepare:
// the precursor must exist and view, sequence number and digest must all
// align.
func (r *Replica) verifyPhase(msg *Message) (*requestState, error) {
	state, ok := r.requests[msg.RequestID]
	if !ok || state.prePrepare == nil {
		return nil, errors.New("no matching pre-prepare")
	}
	pp := state.prePrepare
	if msg.View != pp.View || msg.SeqNum != pp.SeqNum || msg.Digest != pp.Digest {
		return nil, errors.New("inconsistent view, sequence or digest")
	}
	return state, nil
}

// executeRequest runs the committed request through the executor and
// builds the REPLY.
func (r *Replica) executeRequest(requestID string, state *requestState) *Message {
	result := "success"
	if r.executor != nil {
		if err := r.executor(state.request); err != nil {
			logger.Error("Request execution failed", "digest", requestID, "err", err)
			result = "error"
		}
	}
	executedCounter.Inc(1)
	logger.Info("Executed committed request", "digest", requestID, "result", result)
	return &Message{
		Type:      MsgReply,
		View:      r.view,
		RequestID: requestID,
		Result:    result,
	}
}

// ChangeView moves to the next view: the primary rotates and every log
// and counter is dropped.
func (r *Replica) ChangeView() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.view++
	r.primary = r.nodes[int(r.view)%r.n]
	r.requests = make(map[string]*requestState)
	logger.Info("Changed view", "view", r.view, "primary", r.primary)
}

// View returns the current view number.
func (r *Replica) View() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Primary returns the current primary's node id.
func (r *Replica) Primary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.primary
}

// IsPrimary reports whether this replica leads the current view.
func (r *Replica) IsPrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodeID == r.primary
}

// F returns the Byzantine tolerance of the node set.
func (r *Replica) F() int {
	return r.f
}

// PrepareCount returns the prepare counter for a digest.
func (r *Replica) PrepareCount(digest string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.requests[digest]; ok {
		return state.prepareCount
	}
	return 0
}

// CommitCount returns the commit counter for a digest.
func (r *Replica) CommitCount(digest string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.requests[digest]; ok {
		return state.commitCount
	}
	return 0
}

// HasPrePrepare reports whether a pre-prepare is logged for the digest.
func (r *Replica) HasPrePrepare(digest string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.requests[digest]
	return ok && state.prePrepare != nil
}
