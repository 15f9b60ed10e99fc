// Package jwt reads the claims of bearer tokens that happen to be JWTs.
//
// The console never holds the backend's signing key, so claims are read without
// verification. They feed status output and the early expiry check only; the backend
// remains the authority on whether a token is valid.
package jwt
