package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Fraol-M/metta-assistant/internal/service"
)

// EmbeddingJob drains the unembedded backlog one batch per Run call until a
// run makes no progress.
type EmbeddingJob struct {
	embed *service.EmbedService
}

func NewEmbeddingJob(embed *service.EmbedService) *EmbeddingJob {
	return &EmbeddingJob{embed: embed}
}

func (j *EmbeddingJob) Name() string {
	return "embedding"
}

func (j *EmbeddingJob) Run(ctx context.Context) error {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		count, err := j.embed.ProcessPending(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			break
		}
		total += count
	}
	if total > 0 {
		logutil.GetLogger(ctx).Info("scheduled embedding run finished", zap.Int("total", total))
	}
	return nil
}
