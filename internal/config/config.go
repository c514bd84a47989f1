package config

// Config 配置结构
type Config struct {
	// 证书域名配置
	Domain DomainConfig `yaml:"domain"`

	// 部署模板配置
	Template TemplateConfig `yaml:"template"`

	// AWS 凭证与区域
	AWS AWSConfig `yaml:"aws"`

	// Webhook 通知配置
	Webhook *WebhookConfig `yaml:"webhook,omitempty"`
}

// DomainConfig 域名配置
type DomainConfig struct {
	DomainName       string   `yaml:"domain_name" env:"CFD_DOMAIN_NAME"`
	AlternativeNames []string `yaml:"alternative_names,omitempty" env:"CFD_ALTERNATIVE_NAMES" envSeparator:","`

	// 可选，例如 TLSv1.2_2021；为空时不写入模板
	MinimumProtocolVersion string `yaml:"minimum_protocol_version,omitempty" env:"CFD_MINIMUM_PROTOCOL_VERSION"`

	Retries          int  `yaml:"retries" env:"CFD_RETRIES"`                         // 等待验证记录的重试次数，默认31
	IssuanceAttempts int  `yaml:"issuance_attempts" env:"CFD_ISSUANCE_ATTEMPTS"`     // 等待签发的轮询次数，默认15
	WaitForDNSChange bool `yaml:"wait_for_dns_change" env:"CFD_WAIT_FOR_DNS_CHANGE"` // 是否等待 Route53 变更同步
}

// TemplateConfig 部署模板配置
type TemplateConfig struct {
	Path                 string `yaml:"path" env:"CFD_TEMPLATE_PATH"`
	DistributionResource string `yaml:"distribution_resource" env:"CFD_DISTRIBUTION_RESOURCE"`
}

// AWSConfig AWS 配置
type AWSConfig struct {
	Region          string `yaml:"region" env:"AWS_REGION"`
	ACMRegion       string `yaml:"acm_region" env:"CFD_ACM_REGION"` // CloudFront 证书必须位于 us-east-1
	Profile         string `yaml:"profile,omitempty" env:"AWS_PROFILE"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `yaml:"session_token,omitempty" env:"AWS_SESSION_TOKEN"`
}

// WebhookConfig Webhook 通知配置
type WebhookConfig struct {
	Enabled      bool              `yaml:"enabled"`                 // 是否启用
	URL          string            `yaml:"url"`                     // Webhook URL
	Headers      map[string]string `yaml:"headers,omitempty"`       // 自定义请求头
	Events       []string          `yaml:"events,omitempty"`        // 订阅的事件类型
	Timeout      int               `yaml:"timeout,omitempty"`       // 请求超时时间（秒），默认30
	Retries      int               `yaml:"retries,omitempty"`       // 重试次数，默认3
	BodyTemplate string            `yaml:"body_template,omitempty"` // 请求体模板（JSON格式）
}

// HasDomain 是否配置了主域名
func (d *DomainConfig) HasDomain() bool {
	return d.DomainName != ""
}
