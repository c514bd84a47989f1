package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"

	"cfd-certificate/internal/config"
)

// EventType 事件类型
type EventType string

const (
	EventCertificateAttached EventType = "certificate_attached" // 证书已签发并写入模板
	EventValidationTimeout   EventType = "validation_timeout"   // 等待验证记录超时
	EventIssuanceTimeout     EventType = "issuance_timeout"     // 等待签发超时
	EventCertificateFailed   EventType = "certificate_failed"   // 其他失败
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
	defaultBackoff = time.Second
)

// EventData 事件数据
type EventData struct {
	ID        string         `json:"id"`             // 事件ID
	Event     string         `json:"event"`          // 事件类型
	Domain    string         `json:"domain"`         // 主域名
	Timestamp string         `json:"timestamp"`      // 时间戳
	Message   string         `json:"message"`        // 消息
	Data      map[string]any `json:"data,omitempty"` // 额外数据
}

// WebhookNotifier Webhook 通知器
type WebhookNotifier struct {
	config  *config.WebhookConfig
	client  *http.Client
	logger  *log.Entry
	backoff time.Duration // 首次重试的等待时间，之后指数增长
}

// NewWebhookNotifier 创建 Webhook 通知器，未启用时返回 nil
func NewWebhookNotifier(cfg *config.WebhookConfig, logger *log.Entry) *WebhookNotifier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &WebhookNotifier{
		config:  cfg,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		backoff: defaultBackoff,
	}
}

// IsEnabled 检查是否启用
func (w *WebhookNotifier) IsEnabled() bool {
	return w != nil && w.config != nil && w.config.Enabled
}

// ShouldNotify 检查是否应该发送该事件的通知
// 没有配置事件列表时发送所有事件。
func (w *WebhookNotifier) ShouldNotify(eventType EventType) bool {
	if !w.IsEnabled() {
		return false
	}
	if len(w.config.Events) == 0 {
		return true
	}
	for _, e := range w.config.Events {
		if e == string(eventType) {
			return true
		}
	}
	return false
}

// Notify 发送通知
func (w *WebhookNotifier) Notify(ctx context.Context, eventType EventType, domain, message string, data map[string]any) error {
	if !w.ShouldNotify(eventType) {
		return nil
	}

	eventData := EventData{
		ID:        uuid.NewString(),
		Event:     string(eventType),
		Domain:    domain,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   message,
		Data:      data,
	}

	body, err := w.buildBody(eventData)
	if err != nil {
		return err
	}

	retries := w.config.Retries
	if retries <= 0 {
		retries = defaultRetries
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(retries-1), retry.NewExponential(w.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			w.logger.Printf("Webhook 通知失败，重试 (第 %d/%d 次)...", attempt, retries)
		}
		return w.send(ctx, body)
	})
	if err != nil {
		w.logger.Printf("Webhook 通知发送失败 (已尝试 %d 次): %v", attempt, err)
		return err
	}

	w.logger.WithFields(log.Fields{"event": eventType, "domain": domain, "id": eventData.ID}).
		Infof("Webhook 通知发送成功: %s", w.config.URL)
	return nil
}

// buildBody 生成请求体，自定义模板渲染失败时回退到默认 JSON
func (w *WebhookNotifier) buildBody(data EventData) ([]byte, error) {
	if w.config.BodyTemplate != "" {
		body, err := renderTemplate(w.config.BodyTemplate, data)
		if err == nil {
			return body, nil
		}
		w.logger.Printf("渲染 Webhook 请求体模板失败: %v", err)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("序列化事件数据失败: %w", err)
	}
	return body, nil
}

// send 发送一次请求，网络错误和非 2xx 状态码可重试
func (w *WebhookNotifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range w.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("发送请求失败: %w", err))
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return retry.RetryableError(fmt.Errorf("Webhook 返回错误状态码: %d", resp.StatusCode))
	}
	return nil
}

// renderTemplate 渲染请求体模板
func renderTemplate(tmplStr string, data EventData) ([]byte, error) {
	tmplData := map[string]any{
		"ID":        data.ID,
		"Event":     data.Event,
		"Domain":    data.Domain,
		"Timestamp": data.Timestamp,
		"Message":   data.Message,
		"Data":      data.Data,
	}

	funcMap := template.FuncMap{
		"toJson": func(v any) string {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return string(b)
		},
	}

	tmpl, err := template.New("webhook").Funcs(funcMap).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, tmplData); err != nil {
		return nil, fmt.Errorf("渲染模板失败: %w", err)
	}
	return buf.Bytes(), nil
}

// NotifyCertificateAttached 通知证书已签发并写入模板
func (w *WebhookNotifier) NotifyCertificateAttached(ctx context.Context, domain, certificateArn string) error {
	message := fmt.Sprintf("证书已绑定: %s", domain)
	return w.Notify(ctx, EventCertificateAttached, domain, message, map[string]any{
		"certificate_arn": certificateArn,
	})
}

// NotifyValidationTimeout 通知等待验证记录超时
func (w *WebhookNotifier) NotifyValidationTimeout(ctx context.Context, domain, certificateArn string) error {
	message := fmt.Sprintf("等待 DNS 验证记录超时: %s", domain)
	return w.Notify(ctx, EventValidationTimeout, domain, message, map[string]any{
		"certificate_arn": certificateArn,
	})
}

// NotifyIssuanceTimeout 通知等待签发超时
func (w *WebhookNotifier) NotifyIssuanceTimeout(ctx context.Context, domain, certificateArn string) error {
	message := fmt.Sprintf("等待证书签发超时: %s", domain)
	return w.Notify(ctx, EventIssuanceTimeout, domain, message, map[string]any{
		"certificate_arn": certificateArn,
	})
}

// NotifyCertificateFailed 通知证书处理失败
func (w *WebhookNotifier) NotifyCertificateFailed(ctx context.Context, domain, reason string) error {
	message := fmt.Sprintf("证书处理失败: %s", domain)
	return w.Notify(ctx, EventCertificateFailed, domain, message, map[string]any{
		"reason": reason,
	})
}
