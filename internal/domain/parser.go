package domain

import (
	"strings"

	"github.com/miekg/dns"
)

// Normalize 规范化域名：去除首尾空白、转小写、去掉末尾的一个点
// 例如: "Example.COM." -> "example.com"
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".")
}

// ReverseLabels 按标签拆分域名并倒序（从顶级域开始）
// 例如: api.dev.example.com -> [com example dev api]
func ReverseLabels(name string) []string {
	labels := dns.SplitDomainName(Normalize(name))
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels
}

// ZoneMatches 检查托管区域是否拥有该域名
// 按标签对齐比较后缀，而不是简单的字符串后缀：
// example.com 匹配 api.example.com，但不匹配 badexample.com。
// 只有一个标签的域名视为匹配任意区域。
func ZoneMatches(domain, zone string) bool {
	domainLabels := ReverseLabels(domain)
	zoneLabels := ReverseLabels(zone)

	if len(domainLabels) == 1 {
		return true
	}
	if len(domainLabels) < len(zoneLabels) {
		return false
	}

	for i, label := range zoneLabels {
		if domainLabels[i] != label {
			return false
		}
	}
	return true
}
