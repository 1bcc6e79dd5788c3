// Package stream provides latest-value push streams.
//
// A Stream always holds a current value. Subscribers receive that value on
// subscription and then every published value, synchronously and in
// subscription order. Nothing is buffered beyond the latest value: Watch
// adapts a stream to a channel that drops stale values a slow reader missed.
package stream
