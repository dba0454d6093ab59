// Package http contains the HTTP transport layer: the chi router, the
// analytics and health handlers, and the service interfaces they consume.
// Handlers render JSON envelopes on success and RFC 7807 problem details
// on failure.
package http
