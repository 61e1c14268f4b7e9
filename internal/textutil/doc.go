// Package textutil provides the string helpers that turn playlist and video
// titles into safe local file names and stable storage slugs.
package textutil
