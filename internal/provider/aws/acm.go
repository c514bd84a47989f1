package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/acm/types"
	log "github.com/sirupsen/logrus"

	"cfd-certificate/internal/config"
	"cfd-certificate/internal/provider"
)

var _ provider.CertificateAuthority = (*CertProvider)(nil)

// ACMClient CertProvider 使用的 ACM 接口子集
type ACMClient interface {
	ListCertificates(ctx context.Context, params *acm.ListCertificatesInput, optFns ...func(*acm.Options)) (*acm.ListCertificatesOutput, error)
	DescribeCertificate(ctx context.Context, params *acm.DescribeCertificateInput, optFns ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error)
	RequestCertificate(ctx context.Context, params *acm.RequestCertificateInput, optFns ...func(*acm.Options)) (*acm.RequestCertificateOutput, error)
}

// CertProvider ACM 证书提供商
type CertProvider struct {
	client ACMClient
	logger *log.Entry
}

// NewCertProvider 创建 ACM 证书提供商
// CloudFront 只接受 us-east-1 的证书，因此使用 ACMRegion 而不是部署区域。
func NewCertProvider(ctx context.Context, cfg *config.AWSConfig, logger *log.Entry) (*CertProvider, error) {
	awsCfg, err := loadConfig(ctx, cfg, cfg.ACMRegion)
	if err != nil {
		return nil, fmt.Errorf("创建ACM客户端失败: %w", err)
	}
	return NewCertProviderWithClient(acm.NewFromConfig(awsCfg), logger), nil
}

// NewCertProviderWithClient 使用已有客户端创建证书提供商，logger 为 nil 时使用全局 logger
func NewCertProviderWithClient(client ACMClient, logger *log.Entry) *CertProvider {
	return &CertProvider{client: client, logger: entryOrDefault(logger)}
}

// ListCertificates 列出指定状态的证书
func (p *CertProvider) ListCertificates(ctx context.Context, statuses []string) ([]provider.CertificateSummary, error) {
	input := &acm.ListCertificatesInput{}
	for _, status := range statuses {
		input.CertificateStatuses = append(input.CertificateStatuses, types.CertificateStatus(status))
	}

	var certs []provider.CertificateSummary
	paginator := acm.NewListCertificatesPaginator(p.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError(err, "ListCertificates")
		}
		for _, summary := range page.CertificateSummaryList {
			certs = append(certs, provider.CertificateSummary{
				ARN:        aws.ToString(summary.CertificateArn),
				DomainName: aws.ToString(summary.DomainName),
				Status:     string(summary.Status),
			})
		}
	}

	p.logger.Debugf("[ACM] 共查询到 %d 个证书", len(certs))
	return certs, nil
}

// DescribeCertificate 获取证书详情
func (p *CertProvider) DescribeCertificate(ctx context.Context, arn string) (*provider.Certificate, error) {
	out, err := p.client.DescribeCertificate(ctx, &acm.DescribeCertificateInput{
		CertificateArn: aws.String(arn),
	})
	if err != nil {
		return nil, classifyError(err, "DescribeCertificate")
	}
	if out.Certificate == nil {
		return nil, fmt.Errorf("%w: 证书 %s 详情为空", provider.ErrNotFound, arn)
	}

	detail := out.Certificate
	cert := &provider.Certificate{
		ARN:              aws.ToString(detail.CertificateArn),
		Status:           string(detail.Status),
		DomainName:       aws.ToString(detail.DomainName),
		AlternativeNames: detail.SubjectAlternativeNames,
	}
	if cert.ARN == "" {
		cert.ARN = arn
	}

	for _, option := range detail.DomainValidationOptions {
		validation := provider.DomainValidation{
			DomainName: aws.ToString(option.DomainName),
			Status:     string(option.ValidationStatus),
			Method:     string(option.ValidationMethod),
		}
		if rr := option.ResourceRecord; rr != nil {
			validation.Record = &provider.ResourceRecord{
				Name:  aws.ToString(rr.Name),
				Type:  string(rr.Type),
				Value: aws.ToString(rr.Value),
			}
		}
		cert.Validations = append(cert.Validations, validation)
	}

	return cert, nil
}

// RequestCertificate 申请 DNS 验证的证书
func (p *CertProvider) RequestCertificate(ctx context.Context, req provider.CertificateRequest) (string, error) {
	p.logger.Printf("[ACM] 开始为 %s 申请证书...", req.DomainName)

	input := &acm.RequestCertificateInput{
		DomainName:       aws.String(req.DomainName),
		ValidationMethod: types.ValidationMethodDns,
	}

	// 通配符域名的验证域为去掉 "*." 后的域名
	names := append([]string{req.DomainName}, req.AlternativeNames...)
	for _, name := range names {
		input.DomainValidationOptions = append(input.DomainValidationOptions, types.DomainValidationOption{
			DomainName:       aws.String(name),
			ValidationDomain: aws.String(strings.TrimPrefix(name, "*.")),
		})
	}

	// ACM 不接受空的 SubjectAlternativeNames 列表
	if len(req.AlternativeNames) > 0 {
		input.SubjectAlternativeNames = req.AlternativeNames
	}
	if req.IdempotencyToken != "" {
		input.IdempotencyToken = aws.String(req.IdempotencyToken)
	}

	out, err := p.client.RequestCertificate(ctx, input)
	if err != nil {
		return "", classifyError(err, "RequestCertificate")
	}

	arn := aws.ToString(out.CertificateArn)
	p.logger.Printf("[ACM] 证书申请已提交: %s", arn)
	return arn, nil
}
