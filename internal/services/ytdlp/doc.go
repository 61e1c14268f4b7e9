// Package ytdlp adapts the yt-dlp CLI into tubecast's media source.
//
// PlaylistInfo enumerates a playlist with --flat-playlist so no media is
// fetched. Download pulls the best audio stream for one item and hands the
// result to a Transcoder for MP3 conversion. DownloadThumbnail fetches cover
// art over HTTP and normalizes it into a square JPEG.
//
// All subprocess work goes through services.Executor so tests can replace the
// binary with canned output.
package ytdlp
