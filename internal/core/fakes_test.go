package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cfd-certificate/internal/provider"
	"cfd-certificate/internal/template"
)

// fakeCA 证书颁发机构的测试实现
// DescribeCertificate 按调用顺序返回 polls 中的状态，最后一个状态会一直重复。
type fakeCA struct {
	mu sync.Mutex

	summaries []provider.CertificateSummary
	details   map[string]*provider.Certificate
	polls     map[string][]*provider.Certificate

	requestArn string
	requestErr error
	requests   []provider.CertificateRequest
	describes  map[string]int
}

func newFakeCA() *fakeCA {
	return &fakeCA{
		details:   make(map[string]*provider.Certificate),
		polls:     make(map[string][]*provider.Certificate),
		describes: make(map[string]int),
	}
}

// addCertificate 添加一个已存在的证书
func (f *fakeCA) addCertificate(cert *provider.Certificate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, provider.CertificateSummary{ARN: cert.ARN, DomainName: cert.DomainName, Status: cert.Status})
	f.details[cert.ARN] = cert
}

func (f *fakeCA) setPolls(arn string, polls ...*provider.Certificate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls[arn] = polls
}

func (f *fakeCA) describeCount(arn string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.describes[arn]
}

func (f *fakeCA) ListCertificates(ctx context.Context, statuses []string) ([]provider.CertificateSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.CertificateSummary(nil), f.summaries...), nil
}

func (f *fakeCA) DescribeCertificate(ctx context.Context, arn string) (*provider.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.describes[arn]
	f.describes[arn]++

	if polls, ok := f.polls[arn]; ok && len(polls) > 0 {
		if n >= len(polls) {
			n = len(polls) - 1
		}
		return polls[n], nil
	}
	if cert, ok := f.details[arn]; ok {
		return cert, nil
	}
	return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, arn)
}

func (f *fakeCA) RequestCertificate(ctx context.Context, req provider.CertificateRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	arn, err := f.requestArn, f.requestErr
	f.mu.Unlock()

	if err != nil || arn == "" {
		return arn, err
	}

	// 新证书出现在后续的列表中
	f.addCertificate(&provider.Certificate{
		ARN:              arn,
		Status:           provider.StatusPendingValidation,
		DomainName:       req.DomainName,
		AlternativeNames: append([]string{req.DomainName}, req.AlternativeNames...),
	})
	return arn, nil
}

// fakeDNS DNS提供商的测试实现
type fakeDNS struct {
	mu sync.Mutex

	pages     map[string]*provider.ZonePage // 按 marker 索引
	listCalls []string
	listErr   error

	upserts   []upsert
	upsertErr error
	waits     []string

	// barrier 大于 0 时，UpsertRecord 会阻塞到 barrier 个调用同时进行
	barrier  int
	inflight int
	release  chan struct{}
}

type upsert struct {
	zoneID string
	change provider.RecordChange
}

func newFakeDNS(zones ...provider.HostedZone) *fakeDNS {
	return &fakeDNS{
		pages: map[string]*provider.ZonePage{"": {Zones: zones}},
	}
}

func (f *fakeDNS) ListHostedZones(ctx context.Context, marker string) (*provider.ZonePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, marker)
	if f.listErr != nil {
		return nil, f.listErr
	}
	page, ok := f.pages[marker]
	if !ok {
		return nil, fmt.Errorf("unknown marker %q", marker)
	}
	return page, nil
}

func (f *fakeDNS) UpsertRecord(ctx context.Context, zoneID string, change provider.RecordChange) (string, error) {
	f.mu.Lock()
	f.upserts = append(f.upserts, upsert{zoneID: zoneID, change: change})
	if f.upsertErr != nil {
		f.mu.Unlock()
		return "", f.upsertErr
	}

	var release chan struct{}
	if f.barrier > 0 {
		if f.release == nil {
			f.release = make(chan struct{})
		}
		f.inflight++
		release = f.release
		if f.inflight == f.barrier {
			close(f.release)
		}
	}
	id := fmt.Sprintf("/change/%d", len(f.upserts))
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
			return "", errors.New("upserts were not issued concurrently")
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return id, nil
}

func (f *fakeDNS) WaitForChange(ctx context.Context, changeID string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, changeID)
	return nil
}

func (f *fakeDNS) recordedUpserts() []upsert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upsert(nil), f.upserts...)
}

// memHost 内存中的模板
type memHost struct {
	mu      sync.Mutex
	doc     *template.Document
	sets    int
	loadErr error
}

func newMemHost(raw string) *memHost {
	doc, err := template.Parse([]byte(raw))
	if err != nil {
		panic(err)
	}
	return &memHost{doc: doc}
}

func (h *memHost) Template() (*template.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loadErr != nil {
		return nil, h.loadErr
	}
	return h.doc, nil
}

func (h *memHost) SetTemplate(doc *template.Document) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = doc
	h.sets++
	return nil
}

// fakeNotifier 记录通知事件
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) record(event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *fakeNotifier) NotifyCertificateAttached(ctx context.Context, domain, certificateArn string) error {
	return n.record("certificate_attached")
}

func (n *fakeNotifier) NotifyValidationTimeout(ctx context.Context, domain, certificateArn string) error {
	return n.record("validation_timeout")
}

func (n *fakeNotifier) NotifyIssuanceTimeout(ctx context.Context, domain, certificateArn string) error {
	return n.record("issuance_timeout")
}

func (n *fakeNotifier) NotifyCertificateFailed(ctx context.Context, domain, reason string) error {
	return n.record("certificate_failed")
}

// pending 构造等待验证的证书，ready 个域名已生成验证记录
func pending(arn string, domains []string, ready int) *provider.Certificate {
	cert := &provider.Certificate{
		ARN:              arn,
		Status:           provider.StatusPendingValidation,
		DomainName:       domains[0],
		AlternativeNames: domains,
	}
	for i, name := range domains {
		v := provider.DomainValidation{
			DomainName: name,
			Status:     provider.StatusPendingValidation,
			Method:     provider.ValidationMethodDNS,
		}
		if i < ready {
			v.Record = &provider.ResourceRecord{
				Name:  "_v" + fmt.Sprint(i) + "." + name + ".",
				Type:  "CNAME",
				Value: "_t" + fmt.Sprint(i) + ".acm-validations.aws.",
			}
		}
		cert.Validations = append(cert.Validations, v)
	}
	return cert
}

func withStatus(arn, status string) *provider.Certificate {
	return &provider.Certificate{ARN: arn, Status: status}
}
