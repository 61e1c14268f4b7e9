// Package pipeline converts one playlist into a published podcast feed.
//
// Processor.Process walks a fixed sequence of stages: fetch the playlist,
// download and transcode every item, prepare cover art, upload episodes and
// art, synthesize the feed, publish it, clean up local files, and record the
// run in the history ledger. Progress is reported through a Sink as Events;
// every call ends with exactly one terminal Complete or Error event.
//
// Media and storage are reached through the MediaSource and ObjectStore
// interfaces so tests can drive the whole flow with in-memory fakes.
package pipeline
