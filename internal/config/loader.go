package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"cfd-certificate/internal/domain"
)

// 默认值
const (
	DefaultRetries              = 31
	DefaultIssuanceAttempts     = 15
	DefaultDistributionResource = "CloudFrontDistribution"
	DefaultTemplatePath         = ".serverless/cloudformation-template-update-stack.json"
	DefaultACMRegion            = "us-east-1"
)

// Load 加载配置文件，并用环境变量覆盖
// 配置文件不存在时仅使用环境变量。
func Load(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	// 验证配置
	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnv 环境变量覆盖文件中的配置
func applyEnv(config *Config) error {
	for _, target := range []any{&config.Domain, &config.Template, &config.AWS} {
		if err := env.Parse(target); err != nil {
			return fmt.Errorf("解析环境变量失败: %w", err)
		}
	}
	return nil
}

// applyDefaults 设置默认值
func applyDefaults(config *Config) {
	if config.Domain.Retries == 0 {
		config.Domain.Retries = DefaultRetries
	}
	if config.Domain.IssuanceAttempts == 0 {
		config.Domain.IssuanceAttempts = DefaultIssuanceAttempts
	}
	if config.Template.DistributionResource == "" {
		config.Template.DistributionResource = DefaultDistributionResource
	}
	if config.Template.Path == "" {
		config.Template.Path = DefaultTemplatePath
	}
	if config.AWS.ACMRegion == "" {
		config.AWS.ACMRegion = DefaultACMRegion
	}
}

// validate 验证配置
// 未配置域名不是错误，运行时会直接跳过。
func validate(config *Config) error {
	if config.Domain.HasDomain() {
		if _, err := domain.NewSet(config.Domain.DomainName, config.Domain.AlternativeNames...); err != nil {
			return fmt.Errorf("域名配置错误: %w", err)
		}
	}

	if config.Domain.Retries < 0 {
		return fmt.Errorf("retries 不能小于 0")
	}
	if config.Domain.IssuanceAttempts < 0 {
		return fmt.Errorf("issuance_attempts 不能小于 0")
	}

	if config.Webhook != nil && config.Webhook.Enabled && config.Webhook.URL == "" {
		return fmt.Errorf("webhook 已启用但未配置 url")
	}

	return nil
}
