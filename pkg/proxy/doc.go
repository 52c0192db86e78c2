// Package proxy holds the request and response plumbing shared by the relay
// handlers: decoding message requests, writing JSON bodies and mapping relay
// errors to HTTP responses.
//
// # Error Mapping
//
// HandleError turns any error into a status code and a fixed message:
//
//	client input         400  No message provided
//	upstream status      upstream status  Failed to get a response from Azure OpenAI
//	transport            500  Request Failed
//	TLS verification     500  SSL Certificate Verification Failed
//	anything else        500  Internal Server Error
//
// The upstream body, transport error text and panic values are logged by
// the relay and never written to the caller.
//
// # Subpackages
//
//   - handlers: HTTP handlers for /, /api/messages and /upload
//   - middleware: recovery, request ID, access logging and CORS
//   - types: JSON request and response bodies
package proxy
