// Package lisd implements the offload daemon: a small HTTP server that
// accepts websocket connections on /offload and answers longest increasing
// subsequence requests with the wire frames defined in pkg/offload.
//
// The daemon exists so a process can move its heaviest reorder computations
// out of its own scheduler loop. One websocket connection carries one
// request at a time; requests and responses are correlated by ID so a
// client that timed out locally can recognize and discard the late answer.
//
// Besides /offload the router serves /healthz for liveness probes and
// /metrics for Prometheus scrapes. Every computation is wrapped in an
// OpenTelemetry span; configure a tracer provider in main() to export them.
package lisd
