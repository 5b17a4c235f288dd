// Package queue implements the priority queue set the processor enqueues
// follow-up requests onto, plus a bounded-concurrency worker loop that
// drains it.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meshhq/ghcrawler/processor"
)

// Envelope is the wire shape a backend persists/transmits for one queued
// request: enough to reconstruct a processor.Request on the consuming side
// without a shared in-memory object.
type Envelope struct {
	Priority processor.Priority     `json:"priority"`
	Type     processor.ElementType  `json:"type"`
	URL      string                 `json:"url"`
	Context  EnvelopeContext        `json:"context"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// EnvelopeContext mirrors processor.Context in a JSON-safe shape (URN is
// already a string type, so this is mostly a passthrough).
type EnvelopeContext struct {
	Qualifier   processor.URN                 `json:"qualifier"`
	ElementType processor.ElementType         `json:"elementType,omitempty"`
	RepoType    string                        `json:"repoType,omitempty"`
	Relation    *processor.RelationDescriptor `json:"relation,omitempty"`
}

// ToRequest reconstructs a processor.Request from a decoded envelope. Policy
// is left nil (resolved to AllowAll by processor.NewRequest).
func (e Envelope) ToRequest() *processor.Request {
	ctx := processor.Context{
		Qualifier:   e.Context.Qualifier,
		ElementType: e.Context.ElementType,
		RepoType:    e.Context.RepoType,
		Relation:    e.Context.Relation,
	}
	req := processor.NewRequest(e.Type, e.URL, ctx, nil)
	req.Payload = e.Payload
	return req
}

// FromRequest builds the wire envelope for a queued request.
func FromRequest(priority processor.Priority, req *processor.Request) Envelope {
	return Envelope{
		Priority: priority,
		Type:     req.Type,
		URL:      req.URL,
		Context: EnvelopeContext{
			Qualifier:   req.Context.Qualifier,
			ElementType: req.Context.ElementType,
			RepoType:    req.Context.RepoType,
			Relation:    req.Context.Relation,
		},
		Payload: req.Payload,
	}
}

// Marshal/Unmarshal are the two points every backend funnels envelopes
// through, so the wire format stays identical across backends.
func Marshal(e Envelope) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal queue envelope: %w", err)
	}
	return b, nil
}

func Unmarshal(b []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal queue envelope: %w", err)
	}
	return e, nil
}

// Backend is the fuller surface the orchestrator drives a queue
// implementation through: processor.QueueSet's Push, plus the blocking Pop
// the worker loop polls. The processor core only ever pushes.
type Backend interface {
	processor.QueueSet
	// Pop blocks until a request is available or ctx is done, draining the
	// highest-priority non-empty lane first (immediate > soon > default).
	Pop(ctx context.Context) (*processor.Request, error)
}
