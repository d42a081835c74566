package app

import (
	"gorm.io/gorm"

	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

type Repos = repos.Store

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("wiring repos...")
	return repos.NewStore(db, log)
}
