package core

import (
	"context"

	"cfd-certificate/internal/template"
)

// Logger 部署工具提供的日志输出
// *logrus.Entry、*logrus.Logger、*log.Logger 均满足该接口。
type Logger interface {
	Printf(format string, v ...any)
}

// TemplateHost 部署工具持有的模板
type TemplateHost interface {
	Template() (*template.Document, error)
	SetTemplate(doc *template.Document) error
}

// Notifier 运行结果通知
type Notifier interface {
	NotifyCertificateAttached(ctx context.Context, domain, certificateArn string) error
	NotifyValidationTimeout(ctx context.Context, domain, certificateArn string) error
	NotifyIssuanceTimeout(ctx context.Context, domain, certificateArn string) error
	NotifyCertificateFailed(ctx context.Context, domain, reason string) error
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}
