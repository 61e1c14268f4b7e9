// Package preflight provides readiness checks for the filesystem paths and
// object storage tubecast depends on.
//
// "tubecast doctor" runs RunAll and CheckSystemDeps to print a readiness
// report; "tubecast convert" runs CheckSystemDeps before starting a run so a
// missing yt-dlp or ffmpeg fails fast instead of partway through a playlist.
package preflight
