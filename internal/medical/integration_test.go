//go:build integration

package medical

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Ayash-Bera/medquery/internal/auth"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RealBackend(t *testing.T) {
	baseURL := os.Getenv("MEDICAL_BASE_URL")
	secret := os.Getenv("AUTH_JWT_SECRET")

	if baseURL == "" || secret == "" {
		t.Skip("MEDICAL_BASE_URL and AUTH_JWT_SECRET required for integration tests")
	}

	client := NewClient(ClientConfig{
		BaseURL:    baseURL,
		QueryPath:  "/api/v1/medical/query",
		HealthPath: "/api/v1/health/check",
		Timeout:    2 * time.Minute,
	}, logrus.New())

	require.NoError(t, client.Ping(context.Background()))

	svc := NewService(client, auth.NewSignedProvider(secret, "integration-test", time.Minute), logrus.New())

	resp, err := svc.Submit(context.Background(), "What vitamins interact with iron absorption?")
	require.NoError(t, err)
	require.NotEmpty(t, resp)
}
