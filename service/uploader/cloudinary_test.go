package uploader

import (
	"context"
	"os"
	"strings"
	"testing"
	"tixgate/util"

	"github.com/stretchr/testify/require"
)

var (
	service *CloudinaryService
	err     error
)

func TestMain(m *testing.M) {
	// Omit test if this is CI environment
	if strings.TrimSpace(os.Getenv("CI")) != "" {
		util.LOGGER.Warn("CI environment, skip integration test")
		return
	}

	service, err = NewCld(os.Getenv("CLOUDINARY_NAME"), os.Getenv("CLOUDINARY_APIKEY"), os.Getenv("CLOUDINARY_APISECRET"))
	if err != nil {
		util.LOGGER.Error("failed to create cloudinary service for test", "error", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func TestUploadImage(t *testing.T) {
	url, err := service.UploadImage(context.Background(), "tixgate-test-thumb",
		"https://res.cloudinary.com/demo/image/upload/sample.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, url)
	util.LOGGER.Info("Test CloudinaryService", "url", url)
}
