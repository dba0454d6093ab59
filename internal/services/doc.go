// Package services holds the business layer between the HTTP transport
// and the analytics engine. The analytics service owns the immutable
// snapshot, memoizes filtered views per canonical filter key, and fans
// the independent metric families out concurrently for the dashboard.
package services
