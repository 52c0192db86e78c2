// Package providers contains the transport layer for hosted chat completion
// endpoints.
//
// HTTPProvider owns the HTTP client: connection pooling, the TLS trust
// pool, a per-request timeout and reachability tracking. It makes exactly
// one attempt per request and classifies every failure:
//
//   - *UpstreamError: the provider responded with a status other than 200
//   - *TLSVerificationError: the provider's certificate could not be verified
//   - *TransportError: no response was received (DNS, refused, timeout)
//   - *ParseError: a 200 response could not be decoded
//
// Concrete endpoints live in subpackages; see package azure.
package providers
