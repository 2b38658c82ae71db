package catalog

import (
	"fmt"
	"strings"
)

// ValidationError lists every structural problem found in a factor set.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog validation failed:\n  %s", strings.Join(e.Problems, "\n  "))
}

// validateFactors performs all structural checks on the given factor set.
// Returns a *ValidationError describing all problems found, or nil if valid.
func validateFactors(factors []Factor) error {
	var errs []string

	if len(factors) == 0 {
		errs = append(errs, "catalog has no factors")
	}

	ids := make(map[string]bool, len(factors))
	targets := make(map[Point]string, len(factors))
	for i, f := range factors {
		if f.ID == "" {
			errs = append(errs, fmt.Sprintf("factor #%d has an empty ID", i))
			continue
		}
		if ids[f.ID] {
			errs = append(errs, fmt.Sprintf("duplicate factor ID: %q", f.ID))
		}
		ids[f.ID] = true

		if f.Name == "" {
			errs = append(errs, fmt.Sprintf("factor %q has an empty name", f.ID))
		}
		if !f.Pathway.Valid() {
			errs = append(errs, fmt.Sprintf("factor %q has unknown pathway %q", f.ID, f.Pathway))
		}
		if f.Target.X < 0 || f.Target.Y < 0 {
			errs = append(errs, fmt.Sprintf("factor %q has a negative target %s", f.ID, f.Target))
		}
		if other, ok := targets[f.Target]; ok {
			errs = append(errs, fmt.Sprintf("factors %q and %q share target %s", other, f.ID, f.Target))
		} else {
			targets[f.Target] = f.ID
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}
