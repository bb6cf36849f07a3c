package handler

import (
	"github.com/theajstars/voyatek-assessment/internal/app/chat"
	"github.com/theajstars/voyatek-assessment/internal/app/store"
	"github.com/theajstars/voyatek-assessment/internal/configs"
)

// AppDeps bundles the collaborators every handler may need.
type AppDeps struct {
	Gateway *chat.Gateway
	Config  *configs.AppConfig
	Store   *store.Postgres
}
