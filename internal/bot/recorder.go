package bot

import (
	"context"
	"sync"

	"github.com/ent0n29/teamsguide/internal/teams"
)

// Recorder is a Sender that keeps every batch it receives. Useful in tests and dry runs.
type Recorder struct {
	mu      sync.Mutex
	batches [][]*teams.Activity
}

func (r *Recorder) SendActivities(_ context.Context, activities []*teams.Activity) ([]teams.ResourceResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, activities)
	out := make([]teams.ResourceResponse, len(activities))
	for i, a := range activities {
		out[i] = teams.ResourceResponse{ID: a.ID}
	}
	return out, nil
}

// Batches returns each SendActivities call in order.
func (r *Recorder) Batches() [][]*teams.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]*teams.Activity(nil), r.batches...)
}

// Activities flattens all batches.
func (r *Recorder) Activities() []*teams.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*teams.Activity
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}
