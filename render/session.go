package render

import (
	"sync"

	"swiggytracker/model"
)

type ChartKind string

const (
	ChartLine     ChartKind = "line"
	ChartDoughnut ChartKind = "doughnut"
	ChartBar      ChartKind = "bar"
)

// Chart is one drawn chart. Handle changes every time the chart is redrawn
// so the page knows to destroy its old canvas instance.
type Chart struct {
	ID     string    `json:"id"`
	Kind   ChartKind `json:"kind"`
	Handle int       `json:"handle"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Session owns the live chart handles of one dashboard.
type Session struct {
	mu        sync.Mutex
	next      int
	live      map[string]Chart
	destroyed int
}

func NewSession() *Session {
	return &Session{live: map[string]Chart{}}
}

// Draw replaces the chart id with a new one built from series. Any chart
// already drawn under id is destroyed first.
func (s *Session) Draw(id string, kind ChartKind, series []model.SeriesPoint) Chart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyLocked(id)
	s.next++
	c := Chart{
		ID:     id,
		Kind:   kind,
		Handle: s.next,
		Labels: make([]string, len(series)),
		Values: make([]float64, len(series)),
	}
	for i, p := range series {
		c.Labels[i] = p.Label
		c.Values[i] = p.Value
	}
	s.live[id] = c
	return c
}

// Close destroys every chart of the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.live {
		s.destroyLocked(id)
	}
}

func (s *Session) destroyLocked(id string) bool {
	_, ok := s.live[id]
	if !ok {
		return false
	}
	s.destroyed++
	delete(s.live, id)
	return true
}
