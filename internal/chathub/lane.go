package chathub

import (
	"chatroom/backend/internal/config"
	"context"
	"log"
)

// lane runs the emissions caused by one origin (a connection, or the hub itself) one at a
// time and in submission order. A job may wait on a store lookup; that only holds back later
// jobs of the same lane, never other connections.
type lane struct {
	name string
	jobs chan func(ctx context.Context)
	ctx  context.Context
}

func newLane(ctx context.Context, name string, size int) *lane {
	l := &lane{
		name: name,
		jobs: make(chan func(ctx context.Context), size),
		ctx:  ctx,
	}
	go l.run()
	return l
}

func (l *lane) run() {
	for job := range l.jobs {
		l.exec(job)
	}
}

func (l *lane) exec(job func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: recovered from panic in lane %s: %v", l.name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(l.ctx, config.LookupTimeout)
	defer cancel()
	job(ctx)
}

// enqueue must only be called from the hub loop, which is also the only caller of close.
func (l *lane) enqueue(job func(ctx context.Context)) {
	select {
	case l.jobs <- job:
	default:
		log.Printf("WARNING: lane %s is full, dropping emission", l.name)
	}
}

// close lets the lane finish the jobs already queued and then stop.
func (l *lane) close() {
	close(l.jobs)
}
