package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"cfd-certificate/internal/provider"
)

const (
	// ValidationRecordTTL 验证记录的 TTL（秒）
	ValidationRecordTTL = 60

	// ChangeComment Route53 变更备注
	ChangeComment = "Record created by cfd-certificate"

	// DefaultValidationInterval 等待验证记录生成的轮询间隔
	DefaultValidationInterval = 2 * time.Second

	// DefaultChangeSyncTimeout 等待 DNS 变更同步的超时时间
	DefaultChangeSyncTimeout = 5 * time.Minute
)

// Publisher 发布 DNS 验证记录
type Publisher struct {
	ca     provider.CertificateAuthority
	dns    provider.DNSProvider
	logger Logger

	retries     int
	interval    time.Duration
	syncTimeout time.Duration // 为 0 时不等待变更同步
}

// NewPublisher 创建验证记录发布器
func NewPublisher(ca provider.CertificateAuthority, dns provider.DNSProvider, logger Logger, retries int) *Publisher {
	if logger == nil {
		logger = discardLogger{}
	}
	if retries < 0 {
		retries = 0
	}
	return &Publisher{
		ca:       ca,
		dns:      dns,
		logger:   logger,
		retries:  retries,
		interval: DefaultValidationInterval,
	}
}

// Publish 等待证书的全部验证信息就绪后并发写入 DNS
// expected 为配置的域名数，是验证信息条数的下限；复用的证书可能覆盖更多域名。
// 已验证通过的域名不再发布。证书已签发时直接返回；重复执行是安全的（UPSERT）。
func (p *Publisher) Publish(ctx context.Context, certificateArn string, expected int) error {
	var (
		ready   []provider.DomainValidation
		issued  bool
		attempt int
	)

	backoff := retry.WithMaxRetries(uint64(p.retries), retry.NewConstant(p.interval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		cert, err := p.ca.DescribeCertificate(ctx, certificateArn)
		if err != nil {
			return fmt.Errorf("获取证书状态失败: %w", err)
		}

		switch cert.Status {
		case provider.StatusIssued:
			issued = true
			return nil
		case provider.StatusPendingValidation:
		default:
			return fmt.Errorf("%w: %s (%s)", ErrUnexpectedStatus, cert.Status, certificateArn)
		}

		var validated int
		ready, validated = classifyValidations(cert.Validations)
		total := max(expected, len(cert.Validations))
		if done := len(ready) + validated; done < total {
			p.logger.Printf("等待验证信息 (%d/%d)，第 %d 次...", done, total, attempt)
			return retry.RetryableError(fmt.Errorf("%w: %d/%d 个域名的验证记录已生成",
				ErrValidationTimeout, done, total))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if issued {
		p.logger.Printf("证书已签发，无需验证")
		return nil
	}
	if len(ready) == 0 {
		p.logger.Printf("全部域名已验证通过，无需发布验证记录")
		return nil
	}

	return p.publish(ctx, ready)
}

// publish 并发写入全部验证记录，任何一个失败即整体失败
func (p *Publisher) publish(ctx context.Context, validations []provider.DomainValidation) error {
	resolver := NewZoneResolver(p.dns)

	g, ctx := errgroup.WithContext(ctx)
	for _, record := range uniqueRecords(validations) {
		g.Go(func() error {
			return p.publishRecord(ctx, resolver, record)
		})
	}
	return g.Wait()
}

func (p *Publisher) publishRecord(ctx context.Context, resolver *ZoneResolver, record provider.ResourceRecord) error {
	p.logger.Printf("验证证书: %s %s -> %s", record.Name, record.Type, record.Value)

	zone, err := resolver.Resolve(ctx, record.Name)
	if err != nil {
		return err
	}

	changeID, err := p.dns.UpsertRecord(ctx, zone.ID, provider.RecordChange{
		Name:    record.Name,
		Type:    record.Type,
		Value:   record.Value,
		TTL:     ValidationRecordTTL,
		Comment: ChangeComment,
	})
	if err != nil {
		return fmt.Errorf("写入验证记录 %s 失败: %w", record.Name, err)
	}

	if p.syncTimeout > 0 {
		if err := p.dns.WaitForChange(ctx, changeID, p.syncTimeout); err != nil {
			return fmt.Errorf("等待验证记录 %s 同步失败: %w", record.Name, err)
		}
	}
	return nil
}

// classifyValidations 返回可以发布的验证信息和已验证通过的域名数
func classifyValidations(validations []provider.DomainValidation) (ready []provider.DomainValidation, validated int) {
	for _, v := range validations {
		switch {
		case v.Ready():
			ready = append(ready, v)
		case v.Status == provider.StatusValidationSuccess:
			validated++
		}
	}
	return ready, validated
}

// uniqueRecords 去重：通配符域名与主域名共用同一条验证记录
func uniqueRecords(validations []provider.DomainValidation) []provider.ResourceRecord {
	seen := make(map[provider.ResourceRecord]struct{}, len(validations))
	var records []provider.ResourceRecord
	for _, v := range validations {
		if _, ok := seen[*v.Record]; ok {
			continue
		}
		seen[*v.Record] = struct{}{}
		records = append(records, *v.Record)
	}
	return records
}
