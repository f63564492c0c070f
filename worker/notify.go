package worker

import (
	"sync"

	"resume-analyzer/domain"
)

// Notifier delivers in-process completion signals to callers colocated with
// the worker. Polling the record store remains the contract toward external
// clients; this is a convenience for same-process consumers that would
// otherwise poll their own database.
type Notifier struct {
	mu   sync.Mutex
	subs map[string][]chan domain.JobStatus
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string][]chan domain.JobStatus)}
}

// Watch returns a channel that receives the job's terminal status once and
// is then closed. Watching a job that never terminates in this process
// leaves the channel open; callers should select with their own timeout.
func (n *Notifier) Watch(jobID string) <-chan domain.JobStatus {
	ch := make(chan domain.JobStatus, 1)
	n.mu.Lock()
	n.subs[jobID] = append(n.subs[jobID], ch)
	n.mu.Unlock()
	return ch
}

// Publish fires the terminal status to every watcher of the job and drops
// the subscriptions. Safe on a nil notifier so wiring one is optional.
func (n *Notifier) Publish(jobID string, status domain.JobStatus) {
	if n == nil {
		return
	}
	n.mu.Lock()
	watchers := n.subs[jobID]
	delete(n.subs, jobID)
	n.mu.Unlock()

	for _, ch := range watchers {
		ch <- status
		close(ch)
	}
}
