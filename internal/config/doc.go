// Package config defines the settings shared by the async-button binaries
// and provides helpers to load, validate and save them in YAML format.
//
// Besides connection parameters the Config carries the button section, the
// coordinator's label, grace period and debounce period. A zero or omitted
// period in the button section means the default (1s grace, 300ms debounce),
// so a period cannot be configured as zero; use a small positive duration
// such as 1ms to show the loading indicator almost at once.
package config
