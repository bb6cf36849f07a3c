package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status renders as HTTP 200 with a non-zero business code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Message Errors
	ErrRoomNotFound:      {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrNotRoomMember:     {Code: ErrNotRoomMember, Message: "Not a member of room.", Status: http.StatusForbidden},
	ErrPrivateRoomInvite: {Code: ErrPrivateRoomInvite, Message: "Private room requires invite.", Status: http.StatusForbidden},
	ErrInvalidInviteCode: {Code: ErrInvalidInviteCode, Message: "Invalid invite code.", Status: http.StatusNotFound},
	ErrRoomNameRequired:  {Code: ErrRoomNameRequired, Message: "Room name is required.", Status: http.StatusBadRequest},
	ErrJoinTargetMissing: {Code: ErrJoinTargetMissing, Message: "Provide roomId or inviteCode.", Status: http.StatusBadRequest},

	// 3xxx: User and Session Errors
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid credentials.", Status: http.StatusUnauthorized},
	ErrEmailTaken:         {Code: ErrEmailTaken, Message: "Email already registered.", Status: http.StatusConflict},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Invalid email address.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Password must be between %d and %d characters.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
