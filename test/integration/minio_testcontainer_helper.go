package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/service"
)

const defaultMinioTestImage = "docker.io/minio/minio:RELEASE.2025-09-07T16-13-09Z"

type minioIntegrationEnv struct {
	bucket string
	store  *service.MinIOImageStore
	client *minio.Client
}

// newMinIOIntegrationEnv starts a throwaway MinIO server. The test is skipped
// when no container runtime is reachable.
func newMinIOIntegrationEnv(t *testing.T) *minioIntegrationEnv {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	image := strings.TrimSpace(os.Getenv("MINIO_TEST_IMAGE"))
	if image == "" {
		image = defaultMinioTestImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: image,
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data", "--address", ":9000"},
			WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start minio test container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve minio host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		t.Fatalf("resolve minio port: %v", err)
	}
	endpoint := net.JoinHostPort(host, mappedPort.Port())
	bucket := fmt.Sprintf("product-images-it-%d", time.Now().UnixNano())

	store, err := service.NewMinIOImageStore(endpoint, "minioadmin", "minioadmin", bucket, false)
	if err != nil {
		t.Fatalf("create minio image store: %v", err)
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("create minio verification client: %v", err)
	}
	waitForMinIOReady(t, client)

	return &minioIntegrationEnv{bucket: bucket, store: store, client: client}
}

func waitForMinIOReady(t *testing.T, client *minio.Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		_, err := client.ListBuckets(ctx)
		if err == nil {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("minio readiness check timed out: %v", err)
		case <-ticker.C:
		}
	}
}

func (e *minioIntegrationEnv) mustStatObject(t *testing.T, objectKey string) minio.ObjectInfo {
	t.Helper()
	obj, err := e.client.StatObject(context.Background(), e.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		t.Fatalf("stat minio object %q: %v", objectKey, err)
	}
	return obj
}

func isObjectNotFound(err error) bool {
	var errResp minio.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket"
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
