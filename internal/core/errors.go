package core

import "errors"

// 运行失败的错误类型，调用方使用 errors.Is 判断
var (
	// ErrZoneNotFound 验证记录找不到所属的托管区域
	ErrZoneNotFound = errors.New("hosted zone not found")

	// ErrValidationTimeout 重试次数用尽后仍有域名的验证记录未生成
	ErrValidationTimeout = errors.New("timed out waiting for validation records")

	// ErrIssuanceTimeout 轮询次数用尽后证书仍未签发
	ErrIssuanceTimeout = errors.New("timed out waiting for certificate issuance")

	// ErrUnexpectedStatus 证书处于非预期状态（FAILED、EXPIRED、REVOKED 等）
	ErrUnexpectedStatus = errors.New("unexpected certificate status")

	// ErrProvisioningFailed 申请证书未返回 ARN
	ErrProvisioningFailed = errors.New("certificate request returned no reference")
)
