// Package chatbot serves responses from a trained bundle and the corpus
// it was trained on. The engine holds an immutable snapshot behind a
// read-write lock; reloading a bundle swaps the whole snapshot at once,
// so concurrent requests always see a consistent model and corpus pair.
package chatbot

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/hazemdh/leadbot-go/internal/bundle"
	"github.com/hazemdh/leadbot-go/internal/corpus"
	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/logger"
)

// State of the engine lifecycle.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Replies returned when retrieval cannot produce a corpus answer.
const (
	ReplyUnknownIntent = "Je ne suis pas sûr de ce que vous voulez dire. Pouvez-vous reformuler ?"
	ReplyNoCandidate   = "Je n'ai pas de réponse correspondante pour cette intention."
)

// snapshot is the immutable state a Swap installs.
type snapshot struct {
	bundle     *bundle.Bundle
	candidates map[string][]string
}

// Engine classifies an incoming message and answers with the first
// user-side message of a random conversation sharing the predicted
// intent.
type Engine struct {
	mu    sync.RWMutex
	state State
	snap  *snapshot

	intn func(n int) int
	log  *logger.Logger
}

// New returns an engine in the uninitialized state. Requests served in
// this state (or after a failed load) get the maintenance path.
func New(log *logger.Logger) *Engine {
	return &Engine{
		state: StateUninitialized,
		intn:  rand.Intn,
		log:   log.WithModule("chatbot"),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Ready reports whether the engine can serve responses.
func (e *Engine) Ready() bool {
	return e.State() == StateReady
}

// Fail marks the engine failed, keeping any previous snapshot out of
// service.
func (e *Engine) Fail() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateFailed
	e.snap = nil
}

// Swap validates the bundle against the corpus, precomputes the
// candidate responses per intent and installs the new snapshot
// atomically. In-flight requests finish on the old snapshot.
func (e *Engine) Swap(b *bundle.Bundle, c corpus.Corpus) error {
	if b == nil || b.Encoder == nil {
		return apperrors.ErrModelLoad
	}
	if len(c) == 0 {
		return apperrors.ErrCorpusEmpty
	}

	candidates := make(map[string][]string)
	for _, label := range b.Encoder.Classes {
		candidates[label] = c.CandidateResponses(label)
	}

	e.mu.Lock()
	e.snap = &snapshot{bundle: b, candidates: candidates}
	e.state = StateReady
	e.mu.Unlock()

	e.log.Info("engine snapshot installed",
		"algorithm", b.Algorithm,
		"conversations", len(c),
		"intents", len(candidates),
	)
	return nil
}

// Classify predicts the intent label of message.
func (e *Engine) Classify(message string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state != StateReady {
		return "", apperrors.ErrModelLoad
	}
	return e.snap.bundle.Classify(message)
}

// Respond classifies message and picks a response uniformly at random
// among the candidates of the predicted intent. It returns the intent
// alongside the response. The error is non-nil only when the engine is
// not ready; retrieval misses degrade to fixed replies instead.
func (e *Engine) Respond(message string) (intent, response string, err error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", apperrors.ErrInvalidInput
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state != StateReady {
		return "", "", apperrors.ErrModelLoad
	}

	intent, classifyErr := e.snap.bundle.Classify(message)
	if classifyErr != nil {
		e.log.Warn("classification failed", "error", classifyErr)
		return "", ReplyUnknownIntent, nil
	}

	candidates := e.snap.candidates[intent]
	if len(candidates) == 0 {
		return intent, ReplyNoCandidate, nil
	}
	return intent, candidates[e.intn(len(candidates))], nil
}
