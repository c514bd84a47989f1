package core

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"cfd-certificate/internal/config"
	"cfd-certificate/internal/provider"
	awsprovider "cfd-certificate/internal/provider/aws"
)

// Factory 提供商工厂
type Factory struct {
	config *config.Config
	logger *log.Entry // 提供商与管理器共用同一个日志输出

	// 缓存已创建的提供商实例
	certProvider provider.CertificateAuthority
	dnsProvider  provider.DNSProvider
}

// NewFactory 创建工厂，logger 为 nil 时使用全局 logger
func NewFactory(cfg *config.Config, logger *log.Entry) *Factory {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Factory{config: cfg, logger: logger}
}

// GetCertProvider 获取证书提供商（ACM）
func (f *Factory) GetCertProvider(ctx context.Context) (provider.CertificateAuthority, error) {
	if f.certProvider != nil {
		return f.certProvider, nil
	}

	p, err := awsprovider.NewCertProvider(ctx, &f.config.AWS, f.logger)
	if err != nil {
		return nil, fmt.Errorf("获取证书提供商失败: %w", err)
	}

	f.certProvider = p
	return p, nil
}

// GetDNSProvider 获取DNS提供商（Route 53）
func (f *Factory) GetDNSProvider(ctx context.Context) (provider.DNSProvider, error) {
	if f.dnsProvider != nil {
		return f.dnsProvider, nil
	}

	p, err := awsprovider.NewDNSProvider(ctx, &f.config.AWS, f.logger)
	if err != nil {
		return nil, fmt.Errorf("获取DNS提供商失败: %w", err)
	}

	f.dnsProvider = p
	return p, nil
}

// NewManager 使用工厂创建的提供商构建管理器
func (f *Factory) NewManager(ctx context.Context, host TemplateHost, opts ...Option) (*Manager, error) {
	ca, err := f.GetCertProvider(ctx)
	if err != nil {
		return nil, err
	}
	dns, err := f.GetDNSProvider(ctx)
	if err != nil {
		return nil, err
	}
	return NewManager(f.config, ca, dns, host, f.logger, opts...), nil
}
