package queue

import "errors"

// ErrUnknownNode is returned when an operation names a nodeRecid the queue
// has no record of.
var ErrUnknownNode = errors.New("queue: unknown node recid")

// ErrInconsistent is returned by Verify when the queue's internal
// bookkeeping (order list vs. recid index) has diverged.
var ErrInconsistent = errors.New("queue: inconsistent internal state")
