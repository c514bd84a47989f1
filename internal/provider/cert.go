package provider

import "context"

// CertificateAuthority 证书颁发机构接口
type CertificateAuthority interface {
	// ListCertificates 列出指定状态的证书（包含全部分页）
	ListCertificates(ctx context.Context, statuses []string) ([]CertificateSummary, error)

	// DescribeCertificate 获取证书详情
	DescribeCertificate(ctx context.Context, arn string) (*Certificate, error)

	// RequestCertificate 申请证书，返回证书ARN
	RequestCertificate(ctx context.Context, req CertificateRequest) (arn string, err error)
}
