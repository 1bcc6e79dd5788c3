// Package updater publishes and applies releases of the async-button binaries.
//
// A release is a folder served over HTTP holding the binaries, the settings
// file and a manifest with the SHA-512 checksum of each. The updater compares
// the manifest with the installed files, downloads what differs, stops the
// processes running those binaries and swaps the files in place.
package updater
