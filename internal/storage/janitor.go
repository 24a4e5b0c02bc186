package storage

import (
	"context"
	"log"
	"sync"
)

// Janitor removes attachments of deleted posts in the background.
type Janitor struct {
	store AttachmentStore
	queue chan string
	done  chan struct{}
	once  sync.Once
}

// NewJanitor starts the worker goroutine. Close must be called to stop it.
func NewJanitor(store AttachmentStore, buffer int) *Janitor {
	j := &Janitor{
		store: store,
		queue: make(chan string, buffer),
		done:  make(chan struct{}),
	}
	go j.run()
	return j
}

func (j *Janitor) run() {
	defer close(j.done)
	for p := range j.queue {
		j.remove(context.Background(), p)
	}
}

func (j *Janitor) remove(ctx context.Context, storedPath string) {
	if err := j.store.Remove(ctx, storedPath); err != nil {
		log.Printf("janitor: %v", err)
	}
}

// Enqueue schedules removal. When the queue is full the file is removed synchronously.
// It must not be called after Close.
func (j *Janitor) Enqueue(ctx context.Context, storedPath string) {
	select {
	case j.queue <- storedPath:
	default:
		j.remove(ctx, storedPath)
	}
}

// Close stops accepting work and waits for queued removals to finish.
func (j *Janitor) Close() {
	j.once.Do(func() { close(j.queue) })
	<-j.done
}
