// Package handlers provides the HTTP handlers behind the relay routes.
//
// # Handler Types
//
//   - IndexHandler: GET / serves the embedded chat page, GET /static/script.js its script
//   - MessagesHandler: POST /api/messages relays one message upstream
//   - UploadHandler: POST /upload answers 501 until a retrieval backend exists
//
// Health, readiness and version endpoints are registered by the health
// package.
//
// # Request Flow
//
// MessagesHandler follows one path for every request:
//
//  1. Decode {"message": ...} with a body size limit
//  2. Relay the message through a Relayer
//  3. Map the result with proxy.HandleError and write the JSON body
//
// A body that cannot be decoded is logged here as an internal error. Every
// other failure is logged once by the relay service.
package handlers
