// Package objectstore publishes episode audio, artwork, and feed documents to
// an S3-compatible bucket (Cloudflare R2, MinIO, Wasabi) and derives the
// public URLs listeners fetch them from.
//
// Object keys follow a fixed layout under podcasts/{slug}/ so a playlist's
// files stay grouped and a re-run overwrites the same feed key.
package objectstore
