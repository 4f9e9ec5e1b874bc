// Package handlers provides HTTP request handlers for the clip service API.
//
// It includes handlers for:
//   - Asynchronous and synchronous clip extraction
//   - Job submission and polling
//   - Batch status, reset and file listing
//   - Source metadata probing
//   - Serving finished clips
//   - Health checks and version info
package handlers
