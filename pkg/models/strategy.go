package models

import "slices"

// Strategy is a generated IP strategy document.
type Strategy struct {
	// Text is the markdown document shown to the user.
	Text string `json:"text"`
	// Recommendations is set by the static table backend only.
	Recommendations []string `json:"recommendations,omitempty"`
	// Backend names the backend that produced the strategy.
	Backend string `json:"backend"`
	// Degraded is set when a fallback backend answered because the
	// primary one failed. Degraded strategies are not cached.
	Degraded bool `json:"degraded,omitempty"`
}

// Clone returns a copy that shares no memory with s.
func (s Strategy) Clone() Strategy {
	s.Recommendations = slices.Clone(s.Recommendations)
	return s
}

// Result is a successful gateway response.
type Result struct {
	Strategy Strategy `json:"strategy"`
	Cached   bool     `json:"cached"`
}
