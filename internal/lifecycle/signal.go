// Package lifecycle 处理进程信号，取消正在进行的运行。
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// SignalHandler 信号处理器
// 收到信号后取消 Context，轮询中的操作随之返回。
type SignalHandler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	signals []os.Signal

	sigChan  chan os.Signal
	stopOnce sync.Once
}

// NewSignalHandler 创建信号处理器，默认监听 SIGINT 和 SIGTERM
func NewSignalHandler(parent context.Context, signals ...os.Signal) *SignalHandler {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	ctx, cancel := context.WithCancel(parent)
	return &SignalHandler{
		ctx:     ctx,
		cancel:  cancel,
		signals: signals,
		sigChan: make(chan os.Signal, 1),
	}
}

// Context 返回可取消的 context
func (h *SignalHandler) Context() context.Context {
	return h.ctx
}

// Start 开始监听信号
func (h *SignalHandler) Start() {
	signal.Notify(h.sigChan, h.signals...)

	go func() {
		select {
		case sig := <-h.sigChan:
			log.Printf("收到信号 %v，正在取消运行...", sig)
			h.cancel()
		case <-h.ctx.Done():
		}
	}()
}

// Stop 停止监听并取消 context
func (h *SignalHandler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		h.cancel()
	})
}
