// Package http implements the REST surface of the reference cloud server.
//
// It exposes route wiring, request handlers, and middleware. Request tracing,
// access logging, response compression, device authentication and body
// integrity checks are handled in this package before requests are delegated
// to the service layer.
//
// Routes:
//
//	GET  /api/ping
//	GET  /api/version
//	GET  /api/collections/{collection}   (auth)
//	POST /api/mutations                  (auth, HashSHA256)
package http
