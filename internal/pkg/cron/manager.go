package cron

import (
	log "log/slog"

	"github.com/robfig/cron/v3"

	"github.com/zcamb1/S-Connect-sub000/internal/job"
)

type Manager struct {
	engine          *cron.Cron
	commentCountJob *job.CommentCountJob
}

func NewCronManager(commentCountJob *job.CommentCountJob) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithSeconds()),
		commentCountJob: commentCountJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("0 */5 * * * *", s.commentCountJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
