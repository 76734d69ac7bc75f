package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

var (
	ErrImagePayloadMalformed = errors.New("image payload malformed")
	ErrImageWriteFailed      = errors.New("image write failed")
)

type ImageServiceImpl struct {
	store ImageStore
	now   func() time.Time
}

func NewImageService(store ImageStore) *ImageServiceImpl {
	return &ImageServiceImpl{store: store, now: time.Now}
}

func (s *ImageServiceImpl) StoreProductImage(ctx context.Context, payload string) (string, error) {
	backend := s.store.Backend()
	ctx, span := observability.Tracer().Start(ctx, "image.store")
	defer span.End()
	span.SetAttributes(attribute.String("image.backend", backend))

	data, err := decodeImagePayload(payload)
	if err != nil {
		span.SetStatus(codes.Error, "malformed payload")
		observability.RecordImageIngest(ctx, backend, "malformed", 0)
		return "", err
	}
	span.SetAttributes(attribute.Int("image.bytes", len(data)))

	// No collision detection: two inserts in the same millisecond share a name.
	filename := fmt.Sprintf("product_%d.jpg", s.now().UnixMilli())
	if err := s.store.Put(ctx, filename, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		observability.RecordImageIngest(ctx, backend, "write_error", len(data))
		return "", fmt.Errorf("%w: %v", ErrImageWriteFailed, err)
	}
	observability.RecordImageIngest(ctx, backend, "success", len(data))
	return filename, nil
}

// decodeImagePayload drops everything up to the first comma and decodes the
// rest as standard padded Base64.
func decodeImagePayload(payload string) ([]byte, error) {
	_, encoded, ok := strings.Cut(payload, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing ',' separator", ErrImagePayloadMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImagePayloadMalformed, err)
	}
	return data, nil
}
