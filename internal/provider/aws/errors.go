package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"cfd-certificate/internal/provider"
)

// classifyError 将 SDK 错误映射为提供商通用错误
// 上下文错误原样返回，便于调用方判断取消。
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "AccessDeniedException", "UnrecognizedClientException", "InvalidClientTokenId":
			return fmt.Errorf("%w: %s: %v", provider.ErrAccessDenied, operation, err)
		case "Throttling", "ThrottlingException", "PriorRequestNotComplete", "LimitExceededException":
			return fmt.Errorf("%w: %s: %v", provider.ErrThrottled, operation, err)
		case "ResourceNotFoundException", "NoSuchHostedZone", "NoSuchChange":
			return fmt.Errorf("%w: %s: %v", provider.ErrNotFound, operation, err)
		default:
			return fmt.Errorf("%s 失败 (code: %s): %w", operation, apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("%s 失败: %w", operation, err)
}
