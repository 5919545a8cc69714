package graph

import "errors"

// Resolution error kinds. Resolve wraps each of these with the offending pass
// and attachment names; callers discriminate with errors.Is.
var (
	// ErrUnknownPass is returned when the schedule names a pass that was never declared.
	ErrUnknownPass = errors.New("schedule references unknown pass")

	// ErrOrphanPass is returned when a declared pass does not appear in the schedule.
	ErrOrphanPass = errors.New("pass missing from schedule")

	// ErrDuplicatePass is returned when two passes share a name, or a pass is scheduled twice.
	ErrDuplicatePass = errors.New("duplicate pass name")

	// ErrDuplicateAttachment is returned when two attachments share a name.
	ErrDuplicateAttachment = errors.New("duplicate attachment name")

	// ErrUnknownAttachment is returned when a pass references an attachment that was never declared.
	ErrUnknownAttachment = errors.New("unknown attachment reference")

	// ErrPresentAccess is returned when a present pass declares anything other
	// than exactly one target, or a material pass declares a target.
	ErrPresentAccess = errors.New("invalid present pass access")

	// ErrWriteAfterPresent is returned when a pass scheduled after a present
	// pass declares write or read-write access to the presented attachment.
	ErrWriteAfterPresent = errors.New("write after present")

	// ErrNoProducer is returned when a non-external attachment is read before
	// any pass has written it.
	ErrNoProducer = errors.New("attachment read before written")

	// ErrClearAfterUse is returned when a pass requests a clear on an
	// attachment that an earlier pass already used.
	ErrClearAfterUse = errors.New("clear after first use")
)
