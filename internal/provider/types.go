package provider

import "errors"

// 证书状态（与 ACM 保持一致）
const (
	StatusPendingValidation = "PENDING_VALIDATION"
	StatusIssued            = "ISSUED"
	StatusInactive          = "INACTIVE"
)

// StatusValidationSuccess 单个域名已验证通过
const StatusValidationSuccess = "SUCCESS"

// ValidationMethodDNS DNS 验证方式
const ValidationMethodDNS = "DNS"

// ReusableStatuses 可复用证书的状态（未吊销、未失败）
var ReusableStatuses = []string{StatusPendingValidation, StatusIssued, StatusInactive}

// 提供商通用错误，由各实现对 SDK 错误分类后包装
var (
	ErrNotFound     = errors.New("provider: resource not found")
	ErrAccessDenied = errors.New("provider: access denied")
	ErrThrottled    = errors.New("provider: request throttled")
)

// CertificateSummary 证书列表项
type CertificateSummary struct {
	ARN        string // 证书ARN
	DomainName string // 主域名
	Status     string // 状态
}

// Certificate 证书详情
type Certificate struct {
	ARN              string             // 证书ARN
	Status           string             // 状态: PENDING_VALIDATION, ISSUED, INACTIVE, FAILED ...
	DomainName       string             // 主域名
	AlternativeNames []string           // 备用域名列表（ACM 返回时包含主域名）
	Validations      []DomainValidation // 每个域名一条验证信息
}

// DomainValidation 单个域名的验证信息
type DomainValidation struct {
	DomainName string          // 域名
	Status     string          // 验证状态
	Method     string          // 验证方式 (DNS / EMAIL / HTTP)
	Record     *ResourceRecord // DNS验证记录，CA 计算完成前为 nil
}

// Ready 是否可以发布 DNS 验证记录
func (v DomainValidation) Ready() bool {
	return v.Status == StatusPendingValidation &&
		v.Method == ValidationMethodDNS &&
		v.Record != nil
}

// ResourceRecord DNS验证记录
type ResourceRecord struct {
	Name  string // 记录名 (如 _x1.example.com.)
	Type  string // 记录类型 (CNAME)
	Value string // 记录值
}

// CertificateRequest 证书申请参数
type CertificateRequest struct {
	DomainName       string
	AlternativeNames []string // 为空时不提交该字段
	IdempotencyToken string
}

// HostedZone DNS托管区域
type HostedZone struct {
	ID      string // 区域ID (如 /hostedzone/Z123)
	Name    string // 区域名 (如 example.com.)
	Private bool   // 是否私有区域
}

// ZonePage 托管区域分页结果
type ZonePage struct {
	Zones       []HostedZone
	NextMarker  string
	IsTruncated bool
}

// RecordChange DNS记录变更，始终为 UPSERT
type RecordChange struct {
	Name    string
	Type    string
	Value   string
	TTL     int64
	Comment string
}
