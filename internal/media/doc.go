// Package media defines the playlist and video metadata shared by the media
// source adapter, the pipeline, and the feed synthesizer.
//
// Subpackages hold the media-specific helpers: artwork normalizes thumbnails
// into square cover images and ffprobe inspects transcoded audio.
package media
