package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	log "github.com/sirupsen/logrus"

	"cfd-certificate/internal/config"
	"cfd-certificate/internal/provider"
)

var _ provider.DNSProvider = (*DNSProvider)(nil)

// Route53Client DNSProvider 使用的 Route 53 接口子集
type Route53Client interface {
	ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
	GetChange(ctx context.Context, params *route53.GetChangeInput, optFns ...func(*route53.Options)) (*route53.GetChangeOutput, error)
}

// DNSProvider Route 53 DNS提供商
type DNSProvider struct {
	client Route53Client
	logger *log.Entry
}

// NewDNSProvider 创建 Route 53 DNS提供商
func NewDNSProvider(ctx context.Context, cfg *config.AWSConfig, logger *log.Entry) (*DNSProvider, error) {
	awsCfg, err := loadConfig(ctx, cfg, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("创建Route53客户端失败: %w", err)
	}
	return NewDNSProviderWithClient(route53.NewFromConfig(awsCfg), logger), nil
}

// NewDNSProviderWithClient 使用已有客户端创建DNS提供商，logger 为 nil 时使用全局 logger
func NewDNSProviderWithClient(client Route53Client, logger *log.Entry) *DNSProvider {
	return &DNSProvider{client: client, logger: entryOrDefault(logger)}
}

// ListHostedZones 获取一页托管区域
func (p *DNSProvider) ListHostedZones(ctx context.Context, marker string) (*provider.ZonePage, error) {
	input := &route53.ListHostedZonesInput{}
	if marker != "" {
		input.Marker = aws.String(marker)
	}

	out, err := p.client.ListHostedZones(ctx, input)
	if err != nil {
		return nil, classifyError(err, "ListHostedZones")
	}

	page := &provider.ZonePage{
		IsTruncated: out.IsTruncated,
		NextMarker:  aws.ToString(out.NextMarker),
	}
	for _, zone := range out.HostedZones {
		hz := provider.HostedZone{
			ID:   aws.ToString(zone.Id),
			Name: aws.ToString(zone.Name),
		}
		if zone.Config != nil {
			hz.Private = zone.Config.PrivateZone
		}
		page.Zones = append(page.Zones, hz)
	}

	return page, nil
}

// UpsertRecord 创建或更新记录
func (p *DNSProvider) UpsertRecord(ctx context.Context, zoneID string, change provider.RecordChange) (string, error) {
	p.logger.Printf("[Route53] 更新记录: %s %s -> %s (区域: %s)", change.Name, change.Type, change.Value, zoneID)

	out, err := p.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String(change.Comment),
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name: aws.String(change.Name),
						Type: types.RRType(change.Type),
						TTL:  aws.Int64(change.TTL),
						ResourceRecords: []types.ResourceRecord{
							{Value: aws.String(change.Value)},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", classifyError(err, "ChangeResourceRecordSets")
	}

	var changeID string
	if out.ChangeInfo != nil {
		changeID = aws.ToString(out.ChangeInfo.Id)
	}
	return changeID, nil
}

// WaitForChange 等待变更状态变为 INSYNC
func (p *DNSProvider) WaitForChange(ctx context.Context, changeID string, timeout time.Duration) error {
	if changeID == "" {
		return nil
	}

	p.logger.Printf("[Route53] 等待变更 %s 同步...", changeID)
	waiter := route53.NewResourceRecordSetsChangedWaiter(p.client)
	if err := waiter.Wait(ctx, &route53.GetChangeInput{Id: aws.String(changeID)}, timeout); err != nil {
		return classifyError(err, "GetChange")
	}
	return nil
}
