/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package relnotes

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// LabelChecker reports whether a label exists in the target repository.
type LabelChecker interface {
	LabelExists(ctx context.Context, name string) (bool, error)
}

// ValidateLabels checks that every label the configuration references exists
// in the target repository. The checks are independent, so they are issued
// concurrently and awaited together; a label that does not exist is a fatal
// configuration error.
func (g *Generator) ValidateLabels(ctx context.Context, checker LabelChecker) error {
	eg, ctx := errgroup.WithContext(ctx)

	for _, label := range g.cfg.labelsToValidate() {
		eg.Go(func() error {
			exists, err := checker.LabelExists(ctx, label)
			if err != nil {
				return fmt.Errorf("checking label %q: %w", label, err)
			}
			if !exists {
				return fmt.Errorf("label %q does not exist in the target repository", label)
			}
			return nil
		})
	}

	return eg.Wait()
}
