package ui

import "github.com/bamsammich/fileops/internal/stats"

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats stats.ReadTicker
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
