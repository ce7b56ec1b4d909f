package simcore

import "github.com/pkg/errors"

// ErrShuttingDown is returned by Node methods called after Destroy has
// begun.
var ErrShuttingDown = errors.New("simcore: node is shutting down")

// ErrStepInProgress is returned by StepBegin when a previous step has not
// yet been collected with StepWait.
var ErrStepInProgress = errors.New("simcore: step already in progress")

// ErrNoStepInProgress is returned by StepWait when there is no
// outstanding StepBegin to collect.
var ErrNoStepInProgress = errors.New("simcore: no step in progress")
