// Package http contains the HTTP transport layer: chi handlers for report
// upload and aggregation queries, health, and Prometheus metrics. Handlers
// translate service results into the standard JSON envelope and service
// errors into structured API errors.
package http
