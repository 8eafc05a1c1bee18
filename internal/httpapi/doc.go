// Package httpapi serves a small JSON API over a running download
// coordinator so other tools can queue URLs and watch progress.
//
// Routes:
//
//	GET  /healthz        {"status":"ok"}
//	GET  /api/status     counts plus pending/active/completed/failed items
//	GET  /api/jobs/{id}  one item, 404 if unknown
//	POST /api/jobs       {"url": "..."} -> 202 {"id": "..."}
//
// POST answers 400 for a blank url and 503 once the coordinator is shutting
// down.
package httpapi
