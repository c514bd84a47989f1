package provider

import (
	"context"
	"time"
)

// DNSProvider DNS提供商接口
type DNSProvider interface {
	// ListHostedZones 获取一页托管区域
	// marker 为空表示第一页，后续页使用上一页返回的 NextMarker
	ListHostedZones(ctx context.Context, marker string) (*ZonePage, error)

	// UpsertRecord 创建或更新记录，返回变更ID
	UpsertRecord(ctx context.Context, zoneID string, change RecordChange) (changeID string, err error)

	// WaitForChange 等待变更同步到全部权威服务器
	WaitForChange(ctx context.Context, changeID string, timeout time.Duration) error
}
