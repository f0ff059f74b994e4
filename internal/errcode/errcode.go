// Package errcode defines the machine-readable codes carried by API error
// responses and WebSocket notifications.
package errcode

// Convention:
//   - 0:    no error
//   - 4xxx: recoverable/business errors (the flow may continue)
//   - 5xxx: system errors (the flow is aborted)
const (
	OK              = 0
	ResourceMissing = 4004
	InvalidTemplate = 4005
	SystemError     = 5000
)
