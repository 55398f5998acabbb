package scheduler

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmarques/stockfolio-backend/internal/adapter/repository/memory"
	"github.com/lmarques/stockfolio-backend/internal/pubsub"
	"github.com/lmarques/stockfolio-backend/internal/usecase/asset"
)

func newTestScheduler() *Scheduler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	assets := asset.NewService(memory.NewAssetRepository(), nil, nil, pubsub.NewStreams(), log)
	return NewScheduler(assets, log)
}

func TestRegister_ValidSpec(t *testing.T) {
	sched := newTestScheduler()

	err := sched.Register(context.Background(), "0 30 7 * * *")

	require.NoError(t, err)
	assert.Len(t, sched.Cron.Entries(), 1)
}

func TestRegister_InvalidSpec(t *testing.T) {
	sched := newTestScheduler()

	err := sched.Register(context.Background(), "not a cron spec")

	assert.Error(t, err)
	assert.Empty(t, sched.Cron.Entries())
}
