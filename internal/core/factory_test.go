package core

import (
	"context"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfd-certificate/internal/config"
)

func TestFactory_SharesLoggerAndCachesProviders(t *testing.T) {
	// 隔离本机的 AWS 共享配置
	missing := filepath.Join(t.TempDir(), "missing")
	t.Setenv("AWS_CONFIG_FILE", missing)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", missing)
	t.Setenv("AWS_PROFILE", "")

	cfg := testConfig("a.com")
	cfg.AWS = config.AWSConfig{
		Region:          "eu-west-1",
		ACMRegion:       config.DefaultACMRegion,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	}

	logger, _ := logtest.NewNullLogger()
	entry := logger.WithField("component", "test")
	f := NewFactory(cfg, entry)

	m, err := f.NewManager(context.Background(), newMemHost(testTemplate))
	require.NoError(t, err)
	assert.Same(t, entry, m.logger)

	ca, err := f.GetCertProvider(context.Background())
	require.NoError(t, err)
	again, err := f.GetCertProvider(context.Background())
	require.NoError(t, err)
	assert.Same(t, ca, again)
}
