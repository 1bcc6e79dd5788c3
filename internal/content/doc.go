// Package content fetches the current response code from the content server.
//
// The server exposes a two-step API: the root URL returns JSON with a
// next_path pointing at the document that carries the response code.
package content
