package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cfd-certificate/internal/config"
	"cfd-certificate/internal/domain"
	"cfd-certificate/internal/provider"
	"cfd-certificate/internal/template"
)

// Manager 证书管理器
// Run 由部署工具在模板定稿前调用一次。
type Manager struct {
	config      *config.Config
	ca          provider.CertificateAuthority
	host        TemplateHost
	notifier    Notifier
	logger      Logger
	provisioner *Provisioner
	publisher   *Publisher
	waiter      *Waiter
}

// Option 管理器选项
type Option func(*Manager)

// WithNotifier 设置运行结果通知
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithPollIntervals 覆盖轮询间隔
func WithPollIntervals(validation, issuance time.Duration) Option {
	return func(m *Manager) {
		if validation > 0 {
			m.publisher.interval = validation
		}
		if issuance > 0 {
			m.waiter.interval = issuance
		}
	}
}

// run 单次运行的状态，在各阶段之间传递
type run struct {
	domains         domain.Set
	resource        string
	protocolVersion string
	certificateArn  string
}

// NewManager 创建管理器
func NewManager(cfg *config.Config, ca provider.CertificateAuthority, dns provider.DNSProvider, host TemplateHost, logger Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = discardLogger{}
	}

	m := &Manager{
		config:      cfg,
		ca:          ca,
		host:        host,
		logger:      logger,
		provisioner: NewProvisioner(ca, logger),
		publisher:   NewPublisher(ca, dns, logger, cfg.Domain.Retries),
		waiter:      NewWaiter(ca, logger),
	}
	if cfg.Domain.WaitForDNSChange {
		m.publisher.syncTimeout = DefaultChangeSyncTimeout
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run 申请证书、发布验证记录、写入模板并等待签发
// 未配置域名时直接返回；模板只在全部步骤成功后写回一次。
func (m *Manager) Run(ctx context.Context) error {
	if !m.config.Domain.HasDomain() {
		m.logger.Printf("未配置域名，跳过")
		return nil
	}

	r, err := m.newRun()
	if err != nil {
		return err
	}

	start := time.Now()
	m.logger.Printf("========== 处理域名: %s ==========", r.domains.Primary())

	if err := m.execute(ctx, r); err != nil {
		m.notifyFailure(ctx, r, err)
		return err
	}

	m.logger.Printf("证书 %s 已绑定到 %s，耗时 %s", r.certificateArn, r.resource, time.Since(start).Round(time.Second))
	if m.notifier != nil {
		if err := m.notifier.NotifyCertificateAttached(ctx, r.domains.Primary(), r.certificateArn); err != nil {
			m.logger.Printf("发送通知失败: %v", err)
		}
	}
	return nil
}

func (m *Manager) newRun() (*run, error) {
	set, err := domain.NewSet(m.config.Domain.DomainName, m.config.Domain.AlternativeNames...)
	if err != nil {
		return nil, fmt.Errorf("域名配置错误: %w", err)
	}
	return &run{
		domains:         set,
		resource:        m.config.Template.DistributionResource,
		protocolVersion: m.config.Domain.MinimumProtocolVersion,
	}, nil
}

func (m *Manager) execute(ctx context.Context, r *run) error {
	doc, err := m.host.Template()
	if err != nil {
		return fmt.Errorf("读取模板失败: %w", err)
	}

	// 1. 查找或申请证书
	arn, err := m.provisioner.Provision(ctx, r.domains)
	if err != nil {
		return err
	}
	if arn == "" {
		return ErrProvisioningFailed
	}
	r.certificateArn = arn

	// 2. 等待验证记录生成并写入 DNS，配置的域名数为下限
	if err := m.publisher.Publish(ctx, r.certificateArn, len(r.domains)); err != nil {
		return fmt.Errorf("发布验证记录失败: %w", err)
	}

	// 3. 在模板副本上写入证书
	staged := doc.Clone()
	if err := template.Patch(staged, r.resource, r.certificateArn, r.protocolVersion); err != nil {
		return fmt.Errorf("写入模板失败: %w", err)
	}

	// 4. 等待签发
	m.logger.Printf("等待证书签发...")
	if err := m.waiter.Wait(ctx, r.certificateArn, m.config.Domain.IssuanceAttempts); err != nil {
		return fmt.Errorf("等待证书签发失败: %w", err)
	}

	// 5. 写回模板
	if err := m.host.SetTemplate(staged); err != nil {
		return fmt.Errorf("保存模板失败: %w", err)
	}
	return nil
}

func (m *Manager) notifyFailure(ctx context.Context, r *run, runErr error) {
	if m.notifier == nil {
		return
	}

	var err error
	switch {
	case errors.Is(runErr, ErrValidationTimeout):
		err = m.notifier.NotifyValidationTimeout(ctx, r.domains.Primary(), r.certificateArn)
	case errors.Is(runErr, ErrIssuanceTimeout):
		err = m.notifier.NotifyIssuanceTimeout(ctx, r.domains.Primary(), r.certificateArn)
	default:
		err = m.notifier.NotifyCertificateFailed(ctx, r.domains.Primary(), runErr.Error())
	}
	if err != nil {
		m.logger.Printf("发送通知失败: %v", err)
	}
}

// Status 查询已配置域名的可复用证书，不申请新证书
// 没有可复用证书时返回 nil。
func (m *Manager) Status(ctx context.Context) (*provider.Certificate, error) {
	if !m.config.Domain.HasDomain() {
		return nil, nil
	}

	r, err := m.newRun()
	if err != nil {
		return nil, err
	}

	arn, err := m.provisioner.Find(ctx, r.domains)
	if err != nil || arn == "" {
		return nil, err
	}

	cert, err := m.ca.DescribeCertificate(ctx, arn)
	if err != nil {
		return nil, fmt.Errorf("获取证书详情失败: %w", err)
	}
	return cert, nil
}

// AttachedCertificate 读取模板中分发资源当前的证书配置，未设置时返回 nil
func (m *Manager) AttachedCertificate() (*template.ViewerCertificate, error) {
	doc, err := m.host.Template()
	if err != nil {
		return nil, fmt.Errorf("读取模板失败: %w", err)
	}
	return doc.ViewerCertificate(m.config.Template.DistributionResource)
}

// GetConfig 获取配置
func (m *Manager) GetConfig() *config.Config {
	return m.config
}
