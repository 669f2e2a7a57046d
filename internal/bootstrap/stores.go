package bootstrap

import (
	"github.com/praxisnote/transcription/internal/transcript"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideTranscriptionStore(db *gorm.DB) *transcript.Store {
	return transcript.NewStore(db)
}

func RunMigrations(store *transcript.Store) error {
	return store.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(ProvideTranscriptionStore),
	fx.Invoke(RunMigrations),
)
