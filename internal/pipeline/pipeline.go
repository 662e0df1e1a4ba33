// Package pipeline runs a command as an ordered list of named steps that
// share one state value.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Step is one unit of work. Run mutates the shared state and returns an
// error when the remaining steps must not run.
type Step[S any] interface {
	Name() string
	Run(state S) error
}

// FuncStep adapts a plain function to Step.
type FuncStep[S any] struct {
	name string
	fn   func(S) error
}

func (s FuncStep[S]) Name() string { return s.name }

func (s FuncStep[S]) Run(state S) error { return s.fn(state) }

// NewFuncStep names fn as a step.
func NewFuncStep[S any](name string, fn func(S) error) FuncStep[S] {
	return FuncStep[S]{name: name, fn: fn}
}

// Pipeline executes its steps in the order they were added.
type Pipeline[S any] struct {
	steps []Step[S]
	log   *logrus.Entry
}

// New returns an empty pipeline. A nil logger discards step logs.
func New[S any](log *logrus.Entry) *Pipeline[S] {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	return &Pipeline[S]{log: log}
}

// Add appends steps to the pipeline.
func (p *Pipeline[S]) Add(steps ...Step[S]) *Pipeline[S] {
	p.steps = append(p.steps, steps...)
	return p
}

// Steps returns the names of the registered steps, in order.
func (p *Pipeline[S]) Steps() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs every step in order. The first error stops the run and is
// returned wrapped with the failing step's name.
func (p *Pipeline[S]) Execute(state S) error {
	for _, step := range p.steps {
		start := time.Now()
		err := step.Run(state)
		entry := p.log.WithFields(logrus.Fields{
			"step":    step.Name(),
			"elapsed": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Debug("step failed")
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		entry.Debug("step done")
	}
	return nil
}
