package handler

import (
	"tinychat/internal/app/chat"
	"tinychat/internal/app/storage"
	"tinychat/internal/app/store"
	"tinychat/internal/configs"
)

// AppDeps bundles the collaborators the HTTP layer needs.
type AppDeps struct {
	Config      *configs.AppConfig
	Store       *store.Store
	Registry    *chat.Registry
	Coordinator *chat.Coordinator
	Hub         *chat.Hub
	Blobs       storage.BlobStore
}
