// Package cache stores rendered pages on disk and exposes the process-wide
// Manager consulted by the render pipeline. Entries live under
// StoragePath/<namespace>/<key> and are written with temp file + rename so a
// concurrent reader never observes a partial page. The Manager only reads or
// writes in production mode; every request obtains its own Scope through
// EnableComponentCaching, so per-request caching settings never leak between
// concurrent renders.
package cache
