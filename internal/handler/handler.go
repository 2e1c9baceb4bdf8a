package handler

import (
	"database/sql"

	"github.com/mhang/tilemark/internal/config"
	"github.com/mhang/tilemark/internal/diskstat"
)

type Handler struct {
	DB        *sql.DB
	Cfg       *config.Config
	DiskCache *diskstat.Cache
}

func New(database *sql.DB, cfg *config.Config, diskCache *diskstat.Cache) *Handler {
	return &Handler{
		DB:        database,
		Cfg:       cfg,
		DiskCache: diskCache,
	}
}
