package interfaces

import "context"

// ChangeType names the lifecycle transition that produced a change event.
type ChangeType string

const (
	ChangeCreated     ChangeType = "created"
	ChangeUpdated     ChangeType = "updated"
	ChangeSoftDeleted ChangeType = "soft_deleted"
	ChangeHardDeleted ChangeType = "hard_deleted"
)

// ChangeEvent reports a committed mutation of one or more option records.
type ChangeEvent struct {
	Kind string
	Type ChangeType
	IDs  []string
}

// ChangeSubscriber receives change events until ctx is cancelled.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}
