package analyze

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const visionMaxResults = 20

// VisionResult holds the label and localized-object names detected on an image.
type VisionResult struct {
	Labels  []string
	Objects []string
}

// Vision runs label detection and object localization against images by
// their Cloud Storage URI; no image bytes are downloaded.
type Vision struct {
	client     *vision.ImageAnnotatorClient
	maxRetries int
}

// NewVision creates the vision runner.
func NewVision(ctx context.Context, opts ...option.ClientOption) (*Vision, error) {
	c, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{client: c, maxRetries: defaultMaxRetries}, nil
}

// Close releases the underlying client.
func (v *Vision) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

// Annotate labels the image at the given gs:// URI. Duplicate annotations
// are collapsed; empty result lists mean the service found nothing, not an
// error.
func (v *Vision) Annotate(ctx context.Context, gcsURI string) (*VisionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{
				Source: &visionpb.ImageSource{GcsImageUri: gcsURI},
			},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: visionMaxResults},
				{Type: visionpb.Feature_OBJECT_LOCALIZATION, MaxResults: visionMaxResults},
			},
		}},
	}

	start := time.Now()
	resp, err := withRetry(ctx, v.maxRetries, func() (*visionpb.BatchAnnotateImagesResponse, error) {
		return v.client.BatchAnnotateImages(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return &VisionResult{}, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	labels := make([]string, 0, len(r0.LabelAnnotations))
	for _, la := range r0.LabelAnnotations {
		if la == nil {
			continue
		}
		labels = append(labels, la.Description)
	}
	objects := make([]string, 0, len(r0.LocalizedObjectAnnotations))
	for _, oa := range r0.LocalizedObjectAnnotations {
		if oa == nil {
			continue
		}
		objects = append(objects, oa.Name)
	}

	result := &VisionResult{Labels: Dedupe(labels), Objects: Dedupe(objects)}
	log.Debug().
		Str("uri", gcsURI).
		Int("labels", len(result.Labels)).
		Int("objects", len(result.Objects)).
		Dur("duration", time.Since(start)).
		Msg("Vision annotation complete")
	return result, nil
}
