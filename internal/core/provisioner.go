package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"cfd-certificate/internal/domain"
	"cfd-certificate/internal/provider"
)

// Provisioner 查找可复用的证书或申请新证书
type Provisioner struct {
	ca     provider.CertificateAuthority
	logger Logger
}

// NewProvisioner 创建证书申请器
func NewProvisioner(ca provider.CertificateAuthority, logger Logger) *Provisioner {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Provisioner{ca: ca, logger: logger}
}

// Find 查找可复用的证书，没有时返回空字符串
// 可复用：主域名完全一致，且备用域名是所需备用域名的超集。
func (p *Provisioner) Find(ctx context.Context, set domain.Set) (string, error) {
	summaries, err := p.ca.ListCertificates(ctx, provider.ReusableStatuses)
	if err != nil {
		return "", fmt.Errorf("查询已有证书失败: %w", err)
	}

	for _, summary := range summaries {
		if domain.Normalize(summary.DomainName) != set.Primary() {
			continue
		}

		cert, err := p.ca.DescribeCertificate(ctx, summary.ARN)
		if err != nil {
			return "", fmt.Errorf("获取证书 %s 详情失败: %w", summary.ARN, err)
		}
		if set.CoveredBy(cert.AlternativeNames) {
			return summary.ARN, nil
		}
		p.logger.Printf("证书 %s 未覆盖全部备用域名 (%v)，跳过", summary.ARN, cert.AlternativeNames)
	}

	return "", nil
}

// Provision 返回可复用证书的 ARN，没有时申请新证书
func (p *Provisioner) Provision(ctx context.Context, set domain.Set) (string, error) {
	if set.Empty() {
		return "", nil
	}

	arn, err := p.Find(ctx, set)
	if err != nil {
		return "", err
	}
	if arn != "" {
		p.logger.Printf("找到已有证书: %s", arn)
		return arn, nil
	}

	arn, err = p.ca.RequestCertificate(ctx, provider.CertificateRequest{
		DomainName:       set.Primary(),
		AlternativeNames: set.Alternatives(),
		IdempotencyToken: idempotencyToken(set),
	})
	if err != nil {
		return "", fmt.Errorf("申请证书失败: %w", err)
	}
	if arn == "" {
		return "", ErrProvisioningFailed
	}

	p.logger.Printf("证书已创建: %s", arn)
	return arn, nil
}

// idempotencyToken 同一域名集合生成相同的令牌，重复申请返回同一证书
func idempotencyToken(set domain.Set) string {
	sum := sha256.Sum256([]byte(strings.Join(set, ",")))
	return hex.EncodeToString(sum[:])[:32]
}
