package domain

import "errors"

var (
	// ErrInvalidSession is returned when a session ID is unknown or the
	// session has already reached a terminal status.
	ErrInvalidSession = errors.New("session invalid or finished")
	// ErrRoomNotFound indicates no active room matches the given PIN or ID.
	ErrRoomNotFound = errors.New("room not found")
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionMismatch is returned when a submission references a
	// question other than the one last issued to the session.
	ErrQuestionMismatch = errors.New("question does not match the one in play")
	// ErrHelpAlreadyUsed is returned on a repeated help of the same type.
	ErrHelpAlreadyUsed = errors.New("help already used")
	// ErrExternalService wraps failures of the explanation collaborator.
	ErrExternalService = errors.New("external service failure")
	// ErrWriteConflict signals a concurrent mutation of the same session.
	ErrWriteConflict = errors.New("session write conflict")
)
