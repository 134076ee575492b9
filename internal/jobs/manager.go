package jobs

import (
	"context"
	"sync"
)

// Job runs until ctx is cancelled.
type Job interface {
	Name() string
	Start(ctx context.Context)
}

type Manager struct {
	jobs []Job
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Register(job Job) {
	m.jobs = append(m.jobs, job)
}

func (m *Manager) Names() []string {
	names := make([]string, len(m.jobs))
	for i, j := range m.jobs {
		names[i] = j.Name()
	}
	return names
}

// Start runs every registered job and blocks until ctx is done and all jobs
// have returned.
func (m *Manager) Start(ctx context.Context) {
	var wg sync.WaitGroup

	for _, job := range m.jobs {
		wg.Add(1)

		go func(j Job) {
			defer wg.Done()
			j.Start(ctx)
		}(job)
	}

	<-ctx.Done()
	wg.Wait()
}
