package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"cfd-certificate/internal/provider"
)

// DefaultIssuanceInterval 等待证书签发的轮询间隔
const DefaultIssuanceInterval = 60 * time.Second

// Waiter 等待证书签发
type Waiter struct {
	ca       provider.CertificateAuthority
	logger   Logger
	interval time.Duration
}

// NewWaiter 创建签发等待器
func NewWaiter(ca provider.CertificateAuthority, logger Logger) *Waiter {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Waiter{ca: ca, logger: logger, interval: DefaultIssuanceInterval}
}

// Wait 轮询证书状态直到签发
// maxAttempts 为查询总次数；仍处于 PENDING_VALIDATION 时超时失败，其他状态直接失败。
func (w *Waiter) Wait(ctx context.Context, certificateArn string, maxAttempts int) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewConstant(w.interval))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		cert, err := w.ca.DescribeCertificate(ctx, certificateArn)
		if err != nil {
			return fmt.Errorf("获取证书状态失败: %w", err)
		}

		switch cert.Status {
		case provider.StatusIssued:
			w.logger.Printf("证书已签发成功！")
			return nil
		case provider.StatusPendingValidation:
			w.logger.Printf("证书等待验证中 (%d/%d)...", attempt, maxAttempts)
			return retry.RetryableError(fmt.Errorf("%w: %s 在 %d 次查询后仍未签发",
				ErrIssuanceTimeout, certificateArn, attempt))
		default:
			return fmt.Errorf("%w: %s (%s)", ErrUnexpectedStatus, cert.Status, certificateArn)
		}
	})
}
