package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubecast/internal/feed"
	"tubecast/internal/history"
	"tubecast/internal/logging"
	"tubecast/internal/objectstore"
	"tubecast/internal/services"
	"tubecast/internal/textutil"
)

// enter checks for cancellation, then announces stage. Stages after
// publishing ignore cancellation.
func (r *run) enter(stage Stage) error {
	switch stage {
	case StageCleanup, StageRecording:
		r.ctx = context.WithoutCancel(r.ctx)
	default:
		if err := r.interrupted(stage); err != nil {
			return err
		}
	}
	r.stage = stage
	r.ctx = services.WithStage(r.ctx, string(stage))
	r.logger = logging.WithContext(r.ctx, r.p.logger)
	r.logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	r.sink.Emit(Event{Kind: KindStage, Stage: stage, Label: string(stage)})
	return nil
}

func (r *run) interrupted(stage Stage) error {
	err := r.ctx.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, string(stage), "run", "deadline exceeded", err)
	}
	return services.Wrap(services.ErrCanceled, string(stage), "run", "conversion canceled", err)
}

func (r *run) progress(current, total int, message string) {
	r.sink.Emit(Event{
		Kind:    KindProgress,
		Stage:   r.stage,
		Label:   string(r.stage),
		Current: current,
		Total:   total,
		Message: message,
	})
}

func (r *run) fetch() error {
	r.progress(0, 0, "Fetching playlist information...")
	playlist, err := r.p.source.PlaylistInfo(r.ctx, r.url)
	if err != nil {
		if stopped := r.interrupted(StageFetching); stopped != nil {
			return stopped
		}
		return services.Wrap(services.ErrDownload, string(StageFetching), "fetch playlist", "", err)
	}
	if len(playlist.Items) == 0 {
		return services.Wrap(services.ErrEmptyPlaylist, string(StageFetching), "fetch playlist", "No videos found in playlist", nil)
	}
	r.playlist = playlist
	r.slug = textutil.Slugify(playlist.Title)
	if r.slug == "" {
		r.slug = "podcast"
	}
	r.logger.Info("playlist fetched",
		logging.String(logging.FieldEventType, "playlist_fetched"),
		logging.String("title", playlist.Title),
		logging.String("channel", playlist.Channel),
		logging.String("slug", r.slug),
		logging.Int(logging.FieldItemCount, len(playlist.Items)))
	return nil
}

// EpisodeFileName is the local and uploaded base name for the item at
// ordinal.
func EpisodeFileName(ordinal int, title, videoID string) string {
	name := textutil.SanitizeFileName(title)
	if name == "" {
		name = textutil.SanitizeFileName(videoID)
	}
	return fmt.Sprintf("%d-%s.mp3", ordinal, name)
}

func (r *run) download() error {
	total := len(r.playlist.Items)
	prober, canProbe := r.p.source.(DurationProber)
	for i := range r.playlist.Items {
		item := &r.playlist.Items[i]
		ordinal := i + 1
		if err := r.interrupted(StageDownloading); err != nil {
			return err
		}
		r.progress(ordinal, total, "Downloading: "+item.Title)

		filename := EpisodeFileName(ordinal, item.Title, item.ID)
		path, err := r.p.source.Download(r.ctx, *item, filename)
		if path != "" {
			r.scratch.Track(path)
		}
		if err != nil {
			if stopped := r.interrupted(StageDownloading); stopped != nil {
				return stopped
			}
			return services.Wrap(services.ErrDownload, string(StageDownloading), "download",
				fmt.Sprintf("item %d of %d (%s)", ordinal, total, item.ID), err)
		}
		r.assets = append(r.assets, DownloadedAsset{VideoID: item.ID, Path: path, Filename: filename, Ordinal: ordinal})

		if item.DurationSeconds <= 0 && canProbe {
			if seconds, err := prober.ProbeDuration(r.ctx, path); err == nil && seconds > 0 {
				item.DurationSeconds = seconds
			} else if err != nil {
				r.logger.Debug("duration probe failed", logging.String("video_id", item.ID), logging.Error(err))
			}
		}

		r.logger.Info("episode downloaded",
			logging.String(logging.FieldEventType, "episode_downloaded"),
			logging.Int(logging.FieldItemIndex, ordinal),
			logging.Int(logging.FieldItemCount, total),
			logging.String("video_id", item.ID))
		r.progress(ordinal, total, "Downloaded: "+item.Title)
	}
	return nil
}

// prepareArtwork fetches and normalizes cover art. Failure only loses the art.
func (r *run) prepareArtwork() error {
	video, ok := r.playlist.FirstThumbnail()
	if !ok {
		r.logger.Info("no thumbnail available for cover art",
			logging.String(logging.FieldEventType, "artwork_skipped"))
		return nil
	}
	r.progress(0, 0, "Preparing cover art...")
	path, err := r.p.source.DownloadThumbnail(r.ctx, video.ThumbnailURL, artworkFileName)
	if path != "" {
		r.scratch.Track(path)
	}
	if err != nil {
		if stopped := r.interrupted(StageArtwork); stopped != nil {
			return stopped
		}
		logging.WarnWithContext(r.logger, "cover art unavailable", "artwork_failed",
			logging.Error(err),
			logging.String("thumbnail_url", video.ThumbnailURL),
			logging.String(logging.FieldErrorHint, "set feed.fallback_image_url to provide a stable cover"),
			logging.String(logging.FieldImpact, "feed uses the fallback image"))
		return nil
	}
	r.artwork = path
	return nil
}

func (r *run) upload() error {
	total := len(r.assets)
	for i, asset := range r.assets {
		if err := r.interrupted(StageUploading); err != nil {
			return err
		}
		video := r.playlist.Items[i]
		r.progress(asset.Ordinal, total, "Uploading: "+video.Title)
		key := objectstore.EpisodeKey(r.slug, asset.Ordinal, asset.Filename)
		object, err := r.p.store.Upload(r.ctx, asset.Path, key, objectstore.ContentType(asset.Path))
		if err != nil {
			if stopped := r.interrupted(StageUploading); stopped != nil {
				return stopped
			}
			return services.Wrap(services.ErrUpload, string(StageUploading), "upload episode",
				fmt.Sprintf("item %d of %d (%s)", asset.Ordinal, total, asset.VideoID), err)
		}
		r.episodes = append(r.episodes, feed.NewEpisode(video, object))
		r.progress(asset.Ordinal, total, "Uploaded: "+video.Title)
	}

	if r.artwork == "" {
		return nil
	}
	object, err := r.p.store.Upload(r.ctx, r.artwork, objectstore.ArtworkKey(r.slug), objectstore.ContentType(r.artwork))
	if err != nil {
		if stopped := r.interrupted(StageUploading); stopped != nil {
			return stopped
		}
		logging.WarnWithContext(r.logger, "cover art upload failed", "artwork_upload_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check bucket permissions"),
			logging.String(logging.FieldImpact, "feed uses the fallback image"))
		return nil
	}
	r.coverURL = object.URL
	return nil
}

func (r *run) synthesize() error {
	info := feed.NewPodcastInfo(r.playlist, r.p.opts.Feed)
	info.ImageURL = r.imageURL()
	r.feedURL = r.p.store.PublicURL(objectstore.FeedKey(r.slug))
	document, err := feed.Build(info, r.episodes, r.feedURL)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, string(StageSynthesizing), "build feed", "", err)
	}
	r.document = document
	return nil
}

// imageURL picks uploaded art, then the configured fallback, then the source
// thumbnail.
func (r *run) imageURL() string {
	if r.coverURL != "" {
		return r.coverURL
	}
	if fallback := strings.TrimSpace(r.p.opts.FallbackImageURL); fallback != "" {
		return fallback
	}
	if video, ok := r.playlist.FirstThumbnail(); ok {
		return video.ThumbnailURL
	}
	return ""
}

func (r *run) publish() error {
	r.progress(1, 1, "Publishing podcast feed...")
	object, err := r.p.store.UploadFeedDocument(r.ctx, r.document, objectstore.FeedKey(r.slug))
	if err != nil {
		if stopped := r.interrupted(StagePublishing); stopped != nil {
			return stopped
		}
		return services.Wrap(services.ErrUpload, string(StagePublishing), "upload feed", "", err)
	}
	if object.URL != "" {
		r.feedURL = object.URL
	}
	r.logger.Info("feed published",
		logging.String(logging.FieldEventType, "feed_published"),
		logging.String("feed_url", r.feedURL))
	return nil
}

func (r *run) cleanupStage() error {
	r.cleanup()
	return nil
}

// cleanup removes every tracked file. Safe to call more than once.
func (r *run) cleanup() {
	removed, errs := r.scratch.Cleanup()
	for _, err := range errs {
		r.logger.Debug("scratch removal failed", logging.Error(err))
	}
	if removed > 0 {
		r.logger.Debug("scratch files removed", logging.Int("removed", removed))
	}
}

func (r *run) record() error {
	if r.p.ledger == nil {
		return nil
	}
	entry, err := r.p.ledger.Add(r.ctx, history.Entry{
		PlaylistURL:   r.url,
		PlaylistTitle: r.playlist.Title,
		ChannelName:   r.playlist.Channel,
		FeedURL:       r.feedURL,
		EpisodeCount:  len(r.episodes),
	})
	if err != nil {
		logging.WarnWithContext(r.logger, "history update failed", "history_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
			logging.String(logging.FieldImpact, "the feed was published but is missing from tubecast history"))
		return nil
	}
	r.logger.Debug("history entry recorded", logging.String("history_id", entry.ID))
	return nil
}

// fail routes err through the error path: log, error log, Error stage,
// terminal event, notification.
func (r *run) fail(err error) error {
	r.cleanup()
	stage := string(r.stage)
	if stage == "" {
		stage = "Validate"
	}
	message := services.Message(err)
	logging.ErrorWithContext(r.logger, "conversion failed", "run_failed",
		logging.Error(err),
		logging.String("error_kind", services.Kind(err)),
		logging.String(logging.FieldErrorHint, hintFor(err)))

	detached := context.WithoutCancel(r.ctx)
	if r.p.errors != nil {
		r.p.errors.Record(detached, err, map[string]string{
			"stage":        stage,
			"playlist_url": r.url,
		})
	}

	r.stage = StageError
	r.sink.Emit(Event{Kind: KindStage, Stage: StageError, Label: string(StageError), Message: message})
	r.sink.Emit(Event{Kind: KindError, Stage: StageError, Label: string(StageError), Message: message, Err: err})

	if nerr := r.p.notifier.NotifyRunFailed(detached, r.url, err); nerr != nil {
		r.logger.Debug("failure notification not sent", logging.Error(nerr))
	}
	return err
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrValidation):
		return "provide a YouTube playlist or video URL"
	case errors.Is(err, services.ErrEmptyPlaylist):
		return "the playlist has no public videos"
	case errors.Is(err, services.ErrDownload):
		return "update yt-dlp and retry; private or region-locked videos cannot be fetched"
	case errors.Is(err, services.ErrUpload):
		return "check storage credentials and bucket with tubecast doctor"
	case errors.Is(err, services.ErrCanceled):
		return "run again to restart the conversion"
	case errors.Is(err, services.ErrTimeout):
		return "raise tools.download_timeout or storage.request_timeout"
	default:
		return "see tubecast errors for details"
	}
}
