package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint rejected an insert.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrDuplicateMembership indicates the (team, user) pair already exists.
	ErrDuplicateMembership = errors.New("repository: membership already exists")
	// ErrAlreadyInvited indicates a pending invitation already exists for the pair.
	ErrAlreadyInvited = errors.New("repository: pending invitation already exists")
	// ErrAlreadyResponded indicates the invitation reached a terminal state.
	ErrAlreadyResponded = errors.New("repository: invitation already responded")
)
