package datekeeper

import "github.com/trviph/collection"

// A retentionQueue tracks the rotated files this keeper believes are
// on disk, oldest at the front. It carries no hard capacity of its
// own; the keeper evicts before pushing, and a failed delete
// deliberately leaves the queue over capacity so the stale entry is
// retried on a later rotation.
type retentionQueue struct {
	files *collection.List[string]
}

func newRetentionQueue() *retentionQueue {
	return &retentionQueue{files: collection.NewList[string]()}
}

func (q *retentionQueue) length() int { return q.files.Length() }

func (q *retentionQueue) push(name string) { q.files.Append(name) }

// popOldest removes and returns the oldest tracked file.
func (q *retentionQueue) popOldest() (string, error) { return q.files.Dequeue() }

// restoreOldest puts a file back at the front after a failed delete,
// so the next eviction retries the same entry instead of losing track
// of an undeleted file.
func (q *retentionQueue) restoreOldest(name string) { q.files.Prepend(name) }
