package core

import (
	"context"
	"fmt"
	"sync"

	"cfd-certificate/internal/domain"
	"cfd-certificate/internal/provider"
)

// ZoneResolver 为域名查找所属的托管区域
// 第一次解析时拉取全部分页并缓存，一个实例只用于一次发布过程。
// 可并发调用。
type ZoneResolver struct {
	dns provider.DNSProvider

	mu     sync.Mutex
	zones  []provider.HostedZone
	loaded bool
}

// NewZoneResolver 创建区域解析器
func NewZoneResolver(dns provider.DNSProvider) *ZoneResolver {
	return &ZoneResolver{dns: dns}
}

// Zones 返回全部托管区域
func (r *ZoneResolver) Zones(ctx context.Context) ([]provider.HostedZone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.zones, nil
	}

	var zones []provider.HostedZone
	marker := ""
	for {
		page, err := r.dns.ListHostedZones(ctx, marker)
		if err != nil {
			return nil, fmt.Errorf("获取托管区域列表失败: %w", err)
		}
		zones = append(zones, page.Zones...)

		if !page.IsTruncated {
			break
		}
		if page.NextMarker == "" || page.NextMarker == marker {
			return nil, fmt.Errorf("托管区域分页标记无效: %q", page.NextMarker)
		}
		marker = page.NextMarker
	}

	r.zones = zones
	r.loaded = true
	return zones, nil
}

// Resolve 查找拥有该域名的最具体的托管区域
// 同名区域优先选择公有区域，ACM 无法查询私有区域中的记录。
func (r *ZoneResolver) Resolve(ctx context.Context, name string) (*provider.HostedZone, error) {
	zones, err := r.Zones(ctx)
	if err != nil {
		return nil, err
	}

	var best *provider.HostedZone
	bestLen := -1
	for i := range zones {
		zone := &zones[i]
		if !domain.ZoneMatches(name, zone.Name) {
			continue
		}
		l := len(domain.Normalize(zone.Name))
		if l > bestLen || (l == bestLen && best.Private && !zone.Private) {
			best, bestLen = zone, l
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: %s", ErrZoneNotFound, name)
	}
	found := *best
	return &found, nil
}
