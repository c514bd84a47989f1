// Package template 读写 CloudFormation 部署模板中与证书相关的部分。
package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SSLSupportMethodSNI CloudFront 固定使用 SNI
const SSLSupportMethodSNI = "sni-only"

var (
	// ErrInvalidDocument 模板不是合法的 JSON 对象
	ErrInvalidDocument = errors.New("template: invalid document")
	// ErrResourceNotFound 模板中找不到指定资源
	ErrResourceNotFound = errors.New("template: resource not found")
)

// ViewerCertificate CloudFront 分发的证书配置
type ViewerCertificate struct {
	AcmCertificateArn      string `json:"AcmCertificateArn"`
	SslSupportMethod       string `json:"SslSupportMethod"`
	MinimumProtocolVersion string `json:"MinimumProtocolVersion,omitempty"`
}

// Document 部署模板（原始 JSON）
type Document struct {
	raw []byte
}

// Parse 解析模板
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, ErrInvalidDocument
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &Document{raw: raw}, nil
}

// Bytes 返回模板内容
func (d *Document) Bytes() []byte {
	return d.raw
}

// Clone 复制模板，修改副本不影响原模板
func (d *Document) Clone() *Document {
	raw := make([]byte, len(d.raw))
	copy(raw, d.raw)
	return &Document{raw: raw}
}

// Resource 查找资源
func (d *Document) Resource(name string) (gjson.Result, error) {
	res := gjson.GetBytes(d.raw, resourcePath(name))
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrResourceNotFound, name)
	}
	return res, nil
}

// ViewerCertificate 读取资源当前的证书配置，未设置时返回 nil
func (d *Document) ViewerCertificate(resource string) (*ViewerCertificate, error) {
	if _, err := d.Resource(resource); err != nil {
		return nil, err
	}

	res := gjson.GetBytes(d.raw, viewerCertificatePath(resource))
	if !res.Exists() {
		return nil, nil
	}
	return &ViewerCertificate{
		AcmCertificateArn:      res.Get("AcmCertificateArn").String(),
		SslSupportMethod:       res.Get("SslSupportMethod").String(),
		MinimumProtocolVersion: res.Get("MinimumProtocolVersion").String(),
	}, nil
}

// Patch 将证书写入分发资源的 ViewerCertificate
// 整个 ViewerCertificate 块被替换；未配置最低协议版本时不写该字段。
func Patch(doc *Document, resource, certificateArn, minimumProtocolVersion string) error {
	if _, err := doc.Resource(resource); err != nil {
		return err
	}

	viewer := ViewerCertificate{
		AcmCertificateArn:      certificateArn,
		SslSupportMethod:       SSLSupportMethodSNI,
		MinimumProtocolVersion: minimumProtocolVersion,
	}

	raw, err := sjson.SetBytes(doc.raw, viewerCertificatePath(resource), viewer)
	if err != nil {
		return fmt.Errorf("写入 ViewerCertificate 失败: %w", err)
	}
	doc.raw = raw
	return nil
}

func resourcePath(name string) string {
	return "Resources." + escape(name)
}

func viewerCertificatePath(name string) string {
	return resourcePath(name) + ".Properties.DistributionConfig.ViewerCertificate"
}

// escape 转义 gjson/sjson 路径中的特殊字符
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
