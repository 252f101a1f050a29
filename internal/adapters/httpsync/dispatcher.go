package httpsync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// dispatchTimeout bounds each background sync call so a dead server cannot
// pile up goroutines forever.
const dispatchTimeout = 15 * time.Second

// Dispatcher is the fire-and-forget implementation of the SyncDispatcher
// port. Every call returns immediately; the HTTP work happens on its own
// goroutine with a fresh context, detached from the request that caused it.
// No ordering guarantee, no retry; failures are logged, never surfaced.
type Dispatcher struct {
	client *Client
	wg     sync.WaitGroup
}

func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) Upsert(_ context.Context, resource string, payload any) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.client.Upsert(ctx, resource, payload); err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return
			}
			log.Printf("sync dispatch failed: op=upsert resource=%s err=%v", resource, err)
		}
	}()
}

func (d *Dispatcher) Remove(_ context.Context, resource string, id int) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.client.Remove(ctx, resource, id); err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return
			}
			log.Printf("sync dispatch failed: op=remove resource=%s id=%d err=%v", resource, id, err)
		}
	}()
}

// Wait blocks until in-flight dispatches finish. Used at shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
