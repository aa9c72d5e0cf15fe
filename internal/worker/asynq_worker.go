package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/liquan-next/internal/logger"
	"github.com/liquan-next/internal/provider"
	"github.com/liquan-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCertExpireSweep, c.handleCertExpireSweep)
}

func (c *Consumer) handleCertExpireSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cert_expire_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CertExpireSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cert_expire_sweep_unmarshal_failed", "error", err)
		return err
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	if c.SweepService == nil {
		logger.Warnw("worker_cert_expire_sweep_skip_service_nil")
		return nil
	}
	expired, err := c.SweepService.Sweep(asOf)
	if err != nil {
		logger.Warnw("worker_cert_expire_sweep_failed", "error", err)
		return err
	}
	logger.Infow("worker_cert_expire_sweep_done", "expired", expired)
	return nil
}
