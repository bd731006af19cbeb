// Package transfer exports local agents and skills into an archive and
// imports an archive into the local tree, resolving conflicts per item.
package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/klauern/agenttransfer/internal/resolve"
)

var (
	// ErrCancelled is returned when the user interrupts an operation.
	// Changes made to earlier items are kept.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNothingToExport is returned when no item matches the export filter.
	ErrNothingToExport = errors.New("no agents or skills to export")
)

// IsCancellation reports whether err stems from an interrupt, a cancelled
// context or an aborted prompt.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, resolve.ErrAborted)
}

func cancelled(err error) error {
	if errors.Is(err, ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
