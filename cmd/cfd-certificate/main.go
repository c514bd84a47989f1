package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"cfd-certificate/internal/config"
	"cfd-certificate/internal/core"
	"cfd-certificate/internal/lifecycle"
	"cfd-certificate/internal/notification"
	"cfd-certificate/internal/provider"
	"cfd-certificate/internal/storage"
)

const defaultConfigPath = "cfd-certificate.yaml"

func printUsage() {
	fmt.Println(`CloudFront 证书自动配置工具 (ACM + Route 53)

在部署模板定稿前运行：查找或申请 ACM 证书，写入 DNS 验证记录，
等待签发后将证书写入模板中 CloudFront 分发的 ViewerCertificate。

用法:
  cfd-certificate [config.yaml] [run]     # 配置证书并写回模板（单次运行）
  cfd-certificate [config.yaml] status    # 查看可复用证书及验证状态

配置文件不存在时只使用环境变量（可写在 .env 中）:
  CFD_DOMAIN_NAME              主域名，为空时跳过
  CFD_ALTERNATIVE_NAMES        备用域名，逗号分隔
  CFD_MINIMUM_PROTOCOL_VERSION 最低 TLS 协议版本，例如 TLSv1.2_2021
  CFD_RETRIES                  等待验证记录的重试次数 (默认 31)
  CFD_ISSUANCE_ATTEMPTS        等待签发的轮询次数 (默认 15)
  CFD_TEMPLATE_PATH            模板路径
  CFD_DISTRIBUTION_RESOURCE    分发资源名 (默认 CloudFrontDistribution)
  CFD_ACM_REGION               ACM 区域 (默认 us-east-1)

配置文件示例:
  domain:
    domain_name: example.com
    alternative_names: [www.example.com]
    minimum_protocol_version: TLSv1.2_2021
  template:
    path: .serverless/cloudformation-template-update-stack.json
  aws:
    region: eu-west-1
  webhook:
    enabled: true
    url: https://hooks.example.com/cert`)
}

func main() {
	configPath := defaultConfigPath
	command := ""

	args := os.Args[1:]
	if len(args) > 0 {
		if args[0] == "-h" || args[0] == "--help" {
			printUsage()
			return
		}
		configPath = args[0]
	}
	if len(args) > 1 {
		command = args[1]
	}

	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("加载 .env 失败: %v", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger := log.WithField("component", "cfd-certificate")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("加载配置失败: %v", err)
	}

	sigHandler := lifecycle.NewSignalHandler(context.Background())
	sigHandler.Start()
	defer sigHandler.Stop()

	ctx := sigHandler.Context()

	manager, err := newManager(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("初始化失败: %v", err)
	}

	switch command {
	case "", "run":
		err = manager.Run(ctx)
	case "status":
		err = printStatus(ctx, manager)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		sigHandler.Stop()
		logger.Fatalf("运行出错: %v", err)
	}
}

func newManager(ctx context.Context, cfg *config.Config, logger *log.Entry) (*core.Manager, error) {
	var opts []core.Option
	// 未启用时返回 nil 指针，不能直接放进接口
	if notifier := notification.NewWebhookNotifier(cfg.Webhook, logger); notifier != nil {
		opts = append(opts, core.WithNotifier(notifier))
	}

	store := storage.NewFileStorage(cfg.Template.Path, logger)
	return core.NewFactory(cfg, logger).NewManager(ctx, store, opts...)
}

func printStatus(ctx context.Context, manager *core.Manager) error {
	cfg := manager.GetConfig()
	if !cfg.Domain.HasDomain() {
		fmt.Println("未配置域名")
		return nil
	}

	viewer, err := manager.AttachedCertificate()
	switch {
	case err != nil:
		fmt.Printf("模板: 无法读取 (%v)\n", err)
	case viewer == nil || viewer.AcmCertificateArn == "":
		fmt.Printf("模板: %s 未绑定 ACM 证书\n", cfg.Template.DistributionResource)
	default:
		fmt.Printf("模板: %s 已绑定 %s\n", cfg.Template.DistributionResource, viewer.AcmCertificateArn)
	}

	cert, err := manager.Status(ctx)
	if err != nil {
		return err
	}
	if cert == nil {
		fmt.Printf("未找到 %s 的可复用证书\n", cfg.Domain.DomainName)
		return nil
	}

	fmt.Printf("证书: %s\n", cert.ARN)
	fmt.Printf("状态: %s\n", cert.Status)
	fmt.Printf("域名: %s\n", strings.Join(cert.AlternativeNames, ", "))
	for _, v := range cert.Validations {
		fmt.Printf("  - %s [%s/%s] %s\n", v.DomainName, v.Method, v.Status, formatRecord(v.Record))
	}
	return nil
}

func formatRecord(record *provider.ResourceRecord) string {
	if record == nil {
		return "(验证记录未生成)"
	}
	return fmt.Sprintf("%s %s -> %s", record.Name, record.Type, record.Value)
}
