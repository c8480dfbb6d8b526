/*
Package chain implements an ordered pipeline of transforms where the output of
every step is memoized per cache key.

Processing the same key twice runs no transform the second time; the output of
the last step is returned from the cache. An empty key disables memoization for
that call.
*/
package chain

import (
	"errors"
	"fmt"
)

var errNoSteps = errors.New("chain: no steps")

// Transform converts the output of the previous step. key identifies the
// chain of transforms and attrs carries caller supplied context.
type Transform func(data interface{}, key string, attrs interface{}) (interface{}, error)

// Step is a named Transform.
type Step struct {
	Name      string
	Transform Transform
}

// Chain applies its steps in order.
type Chain struct {
	steps []Step
	cache map[string]map[string]interface{}
}

// New returns a Chain of the given steps.
func New(steps ...Step) *Chain {
	c := &Chain{
		steps: steps,
	}
	c.Clear()
	return c
}

// Steps returns the names of the steps in order.
func (c *Chain) Steps() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name
	}
	return names
}

// Cached returns the memoized output of the named step for key.
func (c *Chain) Cached(step, key string) (interface{}, bool) {
	v, ok := c.cache[step][key]
	return v, ok
}

// Clear forgets every memoized output.
func (c *Chain) Clear() {
	c.cache = make(map[string]map[string]interface{}, len(c.steps))
	for _, s := range c.steps {
		c.cache[s.Name] = make(map[string]interface{})
	}
}

// Process runs data through every step.
func (c *Chain) Process(data interface{}, key string, attrs interface{}) (interface{}, error) {
	if len(c.steps) == 0 {
		return nil, errNoSteps
	}

	if key != "" {
		if v, ok := c.cache[c.steps[len(c.steps)-1].Name][key]; ok {
			return v, nil
		}
	}

	for _, s := range c.steps {
		if key != "" {
			if v, ok := c.cache[s.Name][key]; ok {
				data = v
				continue
			}
		}

		v, err := s.Transform(data, key, attrs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		data = v

		if key != "" {
			c.cache[s.Name][key] = data
		}
	}

	return data, nil
}
