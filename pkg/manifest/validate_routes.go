package manifest

import (
	"fmt"
)

// validateRoutes normalizes every route and rejects duplicates.
func (c *Config) validateRoutes() error {
	if len(c.Routes) == 0 {
		c.Routes = DefaultRoutes()
	}
	seen := make(map[string]int, len(c.Routes))
	for i := range c.Routes {
		if err := c.Routes[i].normalize(); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
		if err := c.Routes[i].validate(); err != nil {
			return fmt.Errorf("route %d (%s %s): %w", i, c.Routes[i].Method, c.Routes[i].Path, err)
		}
		key := c.Routes[i].Method + " " + c.Routes[i].Path
		if j, dup := seen[key]; dup {
			return fmt.Errorf("route %d (%s): duplicates route %d", i, key, j)
		}
		seen[key] = i
	}
	return nil
}

func (c *Config) validateDispatch() error {
	d := &c.Dispatch
	for name, t := range map[string]Timing{"queue_timing": d.QueueTiming, "record_timing": d.RecordTiming} {
		switch t {
		case TimingAwait, TimingImmediate:
		default:
			return fmt.Errorf("dispatch.%s %q invalid (want await|immediate)", name, t)
		}
	}
	if d.DeliveryTimeoutMS < 0 || d.DrainTimeoutMS < 0 {
		return fmt.Errorf("dispatch timeouts must be >= 0")
	}
	return nil
}
