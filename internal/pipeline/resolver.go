package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mgpai22/reelsubs/internal/logging"
	"github.com/mgpai22/reelsubs/internal/storage"
	"github.com/mgpai22/reelsubs/internal/subtitle"
	"github.com/mgpai22/reelsubs/internal/transcribe"
)

var (
	ErrEmptyMediaKey = errors.New("media key is empty")

	errNoTranscriber = errors.New("no transcriber configured")
)

const DefaultGenerateTimeout = 5 * time.Minute

// where a resolution was answered from
type Source string

const (
	SourceMemory    Source = "memory"
	SourceLocal     Source = "local"
	SourceRemote    Source = "remote"
	SourceGenerated Source = "generated"
	SourceNone      Source = "none"
)

// local artifact tier; storage.Local satisfies it
type LocalStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// remote artifact tier keyed by namespace; storage.S3 satisfies it
type RemoteStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Put(ctx context.Context, namespace, key string, data []byte, contentType string) error
}

// outcome of one Resolve call
type Resolution struct {
	Key       string
	Namespace string
	Segments  []subtitle.Segment
	Source    Source
	Cause     error // why Source is none
}

// Resolver answers "which captions belong to this media" from the memory,
// local and remote tiers, generating and persisting them on a full miss.
// Concurrent misses for the same artifact share one generation.
type Resolver struct {
	cache       *Cache
	local       LocalStore
	remote      RemoteStore
	transcriber transcribe.Transcriber
	splitter    *subtitle.Splitter
	format      subtitle.Format
	language    string
	timeout     time.Duration
	log         *logging.Logger

	group singleflight.Group
}

type Option func(*Resolver)

func WithCache(c *Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

func WithLocal(s LocalStore) Option {
	return func(r *Resolver) {
		r.local = s
	}
}

func WithRemote(s RemoteStore) Option {
	return func(r *Resolver) {
		r.remote = s
	}
}

func WithTranscriber(t transcribe.Transcriber) Option {
	return func(r *Resolver) {
		r.transcriber = t
	}
}

// splits generated cues before they are persisted
func WithSplitter(s *subtitle.Splitter) Option {
	return func(r *Resolver) {
		r.splitter = s
	}
}

// artifact format, json or vtt
func WithFormat(f subtitle.Format) Option {
	return func(r *Resolver) {
		r.format = f
	}
}

// language hint passed to the transcriber
func WithLanguage(lang string) Option {
	return func(r *Resolver) {
		r.language = lang
	}
}

func WithGenerateTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		format:  subtitle.FormatJSON,
		timeout: DefaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	if r.log == nil {
		r.log = logging.Nop()
	}
	if r.format != subtitle.FormatVTT {
		r.format = subtitle.FormatJSON
	}
	return r
}

// Resolve returns the captions for mediaKey in namespace. Misses and
// generation failures are not errors: a failed generation yields Source
// none with empty Segments and the reason in Cause. An error is returned
// only for an unusable media key or when ctx ends before the shared work
// completes; the work itself keeps running for other callers.
func (r *Resolver) Resolve(ctx context.Context, mediaKey, namespace string) (Resolution, error) {
	key, err := r.artifactKey(mediaKey)
	if err != nil {
		return Resolution{}, err
	}

	if segments, ok := r.cache.Get(namespace, key); ok {
		return Resolution{Key: key, Namespace: namespace, Segments: segments, Source: SourceMemory}, nil
	}

	return r.shared(ctx, "resolve:"+cacheKey(namespace, key), func(ctx context.Context) Resolution {
		return r.resolveMiss(ctx, mediaKey, namespace, key)
	})
}

// Regenerate skips every tier, transcribes mediaKey again and overwrites
// the stored artifacts.
func (r *Resolver) Regenerate(ctx context.Context, mediaKey, namespace string) (Resolution, error) {
	key, err := r.artifactKey(mediaKey)
	if err != nil {
		return Resolution{}, err
	}
	r.cache.Invalidate(namespace, key)

	return r.shared(ctx, generateFlight(namespace, key), func(ctx context.Context) Resolution {
		return r.generate(ctx, r.requestLogger(namespace, key), mediaKey, namespace, key)
	})
}

// Resolve misses and Regenerate share one generation per artifact
func generateFlight(namespace, key string) string {
	return "generate:" + cacheKey(namespace, key)
}

// drops the memory entry for mediaKey; stored artifacts are kept
func (r *Resolver) Invalidate(mediaKey, namespace string) {
	if key, err := r.artifactKey(mediaKey); err == nil {
		r.cache.Invalidate(namespace, key)
	}
}

func (r *Resolver) artifactKey(mediaKey string) (string, error) {
	mediaKey = strings.TrimSpace(mediaKey)
	if mediaKey == "" {
		return "", ErrEmptyMediaKey
	}
	key := storage.ArtifactKey(mediaKey, r.format)
	if key == "" {
		return "", fmt.Errorf("%w: %q has no usable name", ErrEmptyMediaKey, mediaKey)
	}
	return key, nil
}

// runs fn once per flight key on a context detached from any one caller
func (r *Resolver) shared(ctx context.Context, flightKey string, fn func(context.Context) Resolution) (Resolution, error) {
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(flightKey, func() (any, error) {
		return fn(detached), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Resolution), nil
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	}
}

func (r *Resolver) requestLogger(namespace, key string) *logging.Logger {
	return r.log.With("request_id", uuid.NewString(), "namespace", namespace, "key", key)
}

func (r *Resolver) resolveMiss(ctx context.Context, mediaKey, namespace, key string) Resolution {
	log := r.requestLogger(namespace, key)

	// a flight that finished just before this one started may have filled it
	if segments, ok := r.cache.Get(namespace, key); ok {
		return Resolution{Key: key, Namespace: namespace, Segments: segments, Source: SourceMemory}
	}

	if r.local != nil {
		data, found, err := r.local.Get(ctx, key)
		switch {
		case err != nil:
			log.Warnw("local tier read failed, treating as miss", "error", err)
		case found:
			if segments, ok := r.decode(log, data, key, SourceLocal); ok {
				r.cache.Set(namespace, key, segments)
				log.Debugw("resolved from local tier", "segments", len(segments))
				return Resolution{Key: key, Namespace: namespace, Segments: segments, Source: SourceLocal}
			}
		}
	}

	if r.remote != nil && namespace != "" {
		data, found, err := r.remote.Get(ctx, namespace, key)
		switch {
		case err != nil:
			log.Warnw("remote tier read failed, treating as miss", "error", err)
		case found:
			if segments, ok := r.decode(log, data, key, SourceRemote); ok {
				if r.local != nil {
					if err := r.local.Put(ctx, key, data); err != nil {
						log.Warnw("failed to copy remote artifact to local tier", "error", err)
					}
				}
				r.cache.Set(namespace, key, segments)
				log.Debugw("resolved from remote tier", "segments", len(segments))
				return Resolution{Key: key, Namespace: namespace, Segments: segments, Source: SourceRemote}
			}
		}
	}

	if segments, ok := r.cache.Get(namespace, key); ok {
		return Resolution{Key: key, Namespace: namespace, Segments: segments, Source: SourceMemory}
	}
	v, _, _ := r.group.Do(generateFlight(namespace, key), func() (any, error) {
		return r.generate(ctx, log, mediaKey, namespace, key), nil
	})
	return v.(Resolution)
}

func (r *Resolver) decode(log *logging.Logger, data []byte, key string, source Source) ([]subtitle.Segment, bool) {
	format, err := subtitle.FormatFromExtension(key)
	if err != nil {
		format = r.format
	}
	track, err := subtitle.Decode(data, format)
	if err != nil {
		log.Warnw("corrupt artifact, treating as miss", "source", source, "error", err)
		return nil, false
	}
	if len(track.Skipped) > 0 {
		log.Debugw("skipped malformed cues", "source", source, "skipped", len(track.Skipped))
	}
	if len(track.Segments) == 0 {
		log.Warnw("artifact has no usable cues, treating as miss", "source", source)
		return nil, false
	}
	return track.Segments, true
}

func (r *Resolver) generate(ctx context.Context, log *logging.Logger, mediaKey, namespace, key string) Resolution {
	none := func(cause error) Resolution {
		log.Warnw("no subtitles produced", "error", cause)
		return Resolution{
			Key:       key,
			Namespace: namespace,
			Segments:  []subtitle.Segment{},
			Source:    SourceNone,
			Cause:     cause,
		}
	}

	if r.transcriber == nil {
		return none(errNoTranscriber)
	}

	gctx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := time.Now()
	log.Infow("generating subtitles", "media", mediaKey)

	res, err := r.transcriber.Transcribe(gctx, transcribe.Request{
		MediaRef:  mediaKey,
		Namespace: namespace,
		Language:  r.language,
	})
	if err != nil {
		if errors.Is(gctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("generation timed out after %s: %w", r.timeout, err)
		}
		return none(err)
	}
	if res == nil || len(res.Segments) == 0 {
		return none(transcribe.ErrEmptyTranscript)
	}

	segments := res.Segments
	if r.splitter != nil {
		segments = r.splitter.Split(segments)
	}

	log.Infow("generated subtitles",
		"segments", len(segments),
		"language", res.Language,
		"elapsed", time.Since(started).Round(time.Millisecond).String(),
	)

	r.persist(ctx, log, namespace, key, segments)
	r.cache.Set(namespace, key, segments)

	return Resolution{Key: key, Namespace: namespace, Segments: segments, Source: SourceGenerated}
}

// writes both tiers; failures are logged and never fail the resolution
func (r *Resolver) persist(ctx context.Context, log *logging.Logger, namespace, key string, segments []subtitle.Segment) {
	data, err := subtitle.Encode(segments, r.format)
	if err != nil {
		log.Errorw("failed to encode artifact", "error", err)
		return
	}

	if r.local != nil {
		if err := r.local.Put(ctx, key, data); err != nil {
			log.Warnw("failed to write local artifact", "error", err)
		}
	}
	if r.remote != nil && namespace != "" {
		if err := r.remote.Put(ctx, namespace, key, data, subtitle.ContentType(r.format)); err != nil {
			log.Warnw("failed to write remote artifact", "error", err)
		}
	}
}
