package domain

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/miekg/dns"
)

var (
	// ErrEmptySet 未配置主域名
	ErrEmptySet = errors.New("domain set is empty")
	// ErrInvalidName 域名格式不合法
	ErrInvalidName = errors.New("invalid domain name")
	// ErrDuplicateName 域名重复
	ErrDuplicateName = errors.New("duplicate domain name")
)

// hostnameLabel 主机名标签：字母、数字、连字符，不以连字符开头或结尾
var hostnameLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Set 证书覆盖的域名集合
// 第一个元素为主域名（CN），其余为备用域名（SAN），顺序与配置一致。
type Set []string

// NewSet 创建域名集合，校验格式并拒绝重复
func NewSet(primary string, alternatives ...string) (Set, error) {
	primary = Normalize(primary)
	if primary == "" {
		return nil, ErrEmptySet
	}

	set := make(Set, 0, len(alternatives)+1)
	seen := make(map[string]struct{}, len(alternatives)+1)

	for _, name := range append([]string{primary}, alternatives...) {
		name = Normalize(name)
		if !validName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
		set = append(set, name)
	}

	return set, nil
}

// validName 检查是否为合法的证书域名
// 只允许最左侧的标签为通配符 "*"，其余标签必须是主机名标签。
func validName(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return false
	}

	labels := dns.SplitDomainName(name)
	for i, label := range labels {
		if i == 0 && label == "*" && len(labels) > 1 {
			continue
		}
		if !hostnameLabel.MatchString(label) {
			return false
		}
	}
	return true
}

// Primary 返回主域名
func (s Set) Primary() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Alternatives 返回备用域名列表（可能为空）
func (s Set) Alternatives() []string {
	if len(s) < 2 {
		return nil
	}
	return s[1:]
}

// Empty 是否未配置任何域名
func (s Set) Empty() bool {
	return len(s) == 0
}

// CoveredBy 检查证书的备用域名是否覆盖集合中的全部备用域名
func (s Set) CoveredBy(sans []string) bool {
	have := make(map[string]struct{}, len(sans))
	for _, san := range sans {
		have[Normalize(san)] = struct{}{}
	}
	for _, name := range s.Alternatives() {
		if _, ok := have[name]; !ok {
			return false
		}
	}
	return true
}
