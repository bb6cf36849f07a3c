package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates an unsupported Content-Type header.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates the request rate exceeded the limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Room and Message Errors
const (
	// ErrRoomNotFound indicates the referenced room does not exist.
	ErrRoomNotFound = 2101

	// ErrNotRoomMember indicates the caller is not a member of the room.
	ErrNotRoomMember = 2102

	// ErrPrivateRoomInvite indicates a private room was joined without an invite.
	ErrPrivateRoomInvite = 2103

	// ErrInvalidInviteCode indicates the supplied invite code matched no room.
	ErrInvalidInviteCode = 2104

	// ErrRoomNameRequired indicates room creation without a name.
	ErrRoomNameRequired = 2105

	// ErrJoinTargetMissing indicates a join request with neither roomId nor inviteCode.
	ErrJoinTargetMissing = 2106
)

// 3xxx: User and Session Errors
const (
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = 3002

	// ErrEmailTaken indicates the registration email is already in use.
	ErrEmailTaken = 3003

	// ErrUserNotFound indicates no account matches the given identity.
	ErrUserNotFound = 3004

	// ErrInvalidEmail indicates the supplied email failed validation.
	ErrInvalidEmail = 3005

	// ErrInvalidPassword indicates the supplied password failed validation.
	ErrInvalidPassword = 3006
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)
