package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// VideoResult holds the segment/shot label names and tracked-object names
// annotated on a video.
type VideoResult struct {
	Labels  []string
	Objects []string
}

// Video runs the Video Intelligence annotation on videos by Cloud Storage
// URI. The long-running operation is awaited to completion inside Annotate;
// there is no checkpointing of partial progress.
type Video struct {
	client     *videointelligence.Client
	maxRetries int
}

// NewVideo creates the video-annotation runner.
func NewVideo(ctx context.Context, opts ...option.ClientOption) (*Video, error) {
	c, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("videointelligence client: %w", err)
	}
	return &Video{client: c, maxRetries: defaultMaxRetries}, nil
}

// Close releases the underlying client.
func (v *Video) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

// Annotate runs label detection and object tracking on the video at the
// given gs:// URI and collapses the raw annotations into deduplicated name
// lists.
func (v *Video) Annotate(ctx context.Context, gcsURI string) (*VideoResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	req := &videointelligencepb.AnnotateVideoRequest{
		InputUri: gcsURI,
		Features: []videointelligencepb.Feature{
			videointelligencepb.Feature_LABEL_DETECTION,
			videointelligencepb.Feature_OBJECT_TRACKING,
		},
	}

	start := time.Now()
	resp, err := withRetry(ctx, v.maxRetries, func() (*videointelligencepb.AnnotateVideoResponse, error) {
		op, err := v.client.AnnotateVideo(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("videointelligence AnnotateVideo: %w", err)
	}

	if resp == nil || len(resp.AnnotationResults) == 0 || resp.AnnotationResults[0] == nil {
		return &VideoResult{}, nil
	}
	ar := resp.AnnotationResults[0]

	labels := make([]string, 0, len(ar.SegmentLabelAnnotations)+len(ar.ShotLabelAnnotations))
	for _, la := range ar.SegmentLabelAnnotations {
		if la == nil || la.Entity == nil {
			continue
		}
		labels = append(labels, la.Entity.Description)
	}
	for _, la := range ar.ShotLabelAnnotations {
		if la == nil || la.Entity == nil {
			continue
		}
		labels = append(labels, la.Entity.Description)
	}

	objects := make([]string, 0, len(ar.ObjectAnnotations))
	for _, oa := range ar.ObjectAnnotations {
		if oa == nil || oa.Entity == nil {
			continue
		}
		objects = append(objects, oa.Entity.Description)
	}

	result := &VideoResult{Labels: Dedupe(labels), Objects: Dedupe(objects)}
	log.Debug().
		Str("uri", gcsURI).
		Int("labels", len(result.Labels)).
		Int("objects", len(result.Objects)).
		Dur("duration", time.Since(start)).
		Msg("Video annotation complete")
	return result, nil
}
