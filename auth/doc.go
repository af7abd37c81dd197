// Package auth gates the sunspot API behind API keys.
//
// Keys are stored hashed (SHA-256 by default) and looked up through a
// KeyStore. The HTTP Middleware checks a configurable header on requests
// under a path prefix and places the resolved Identity in the request
// context.
package auth
