// Package types defines the JSON bodies exchanged with browser clients.
//
// Requests and responses are deliberately small:
//
//	POST /api/messages  {"message": "..."}
//	200                 {"response": "..."}
//	4xx/5xx             {"error": "..."}
//
// Error messages are the fixed Msg* constants so that no upstream detail
// can leak to a caller.
package types
