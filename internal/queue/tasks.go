package queue

import (
	"encoding/json"
	"time"

	"github.com/liquan-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCertExpireSweep 证书过期扫描任务
	TaskCertExpireSweep = constants.TaskCertExpireSweep
)

// CertExpireSweepPayload 过期扫描任务载荷
type CertExpireSweepPayload struct {
	AsOf time.Time `json:"as_of"`
}

// NewCertExpireSweepTask 创建过期扫描任务
func NewCertExpireSweepTask(payload CertExpireSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCertExpireSweep, body), nil
}
