package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"rpg-backend/internal/modules/game/battle"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSuspicion struct {
	mu     sync.Mutex
	events []battle.SuspicionEvent
}

func (r *recordingSuspicion) Report(_ context.Context, e battle.SuspicionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, payload)
	return nil
}

type failingCounter struct{}

func (failingCounter) IncrWindow(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("redis unavailable")
}
