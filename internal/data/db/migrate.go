package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/ytlearn/backend/internal/domain"
)

// AutoMigrateAll creates/updates every non-vector table. The transcriptions
// table's embedding column is bootstrapped separately by
// EnsureVectorColumn, since its width (embedding_dim) is a runtime config
// value gorm's struct tags can't express.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Video{},
		&types.AudioChunk{},
		&types.Transcription{},
		&types.Generation{},
		&types.Question{},
	)
}

// EnsureVectorColumn enables the pgvector extension, adds the
// transcriptions.embedding column at the configured dimension when it is
// missing, and creates a cosine-distance ivfflat index on it. An existing
// column is left as it is; its width is not compared with dim. AutoMigrate can't express a
// typed vector(D) column since D is only known at runtime, so this runs
// once at startup right after AutoMigrateAll.
func EnsureVectorColumn(db *gorm.DB, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("embedding dimension must be > 0, got %d", dim)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		return fmt.Errorf("enable vector extension: %w", err)
	}

	var exists bool
	checkSQL := `
SELECT EXISTS (
	SELECT 1 FROM information_schema.columns
	WHERE table_name = 'transcriptions' AND column_name = 'embedding'
);`
	if err := db.Raw(checkSQL).Scan(&exists).Error; err != nil {
		return fmt.Errorf("check embedding column: %w", err)
	}
	if !exists {
		alterSQL := fmt.Sprintf(`ALTER TABLE transcriptions ADD COLUMN embedding vector(%d);`, dim)
		if err := db.Exec(alterSQL).Error; err != nil {
			return fmt.Errorf("add embedding column: %w", err)
		}
	}

	indexSQL := `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = current_schema()
			AND indexname = 'transcriptions_embedding_idx'
	) THEN
		EXECUTE 'CREATE INDEX transcriptions_embedding_idx ON transcriptions USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);';
	END IF;
END
$$;`
	if err := db.Exec(indexSQL).Error; err != nil {
		return fmt.Errorf("create embedding index: %w", err)
	}
	return nil
}

// Migrate runs AutoMigrateAll followed by EnsureVectorColumn against the
// configured embedding dimension.
func (s *PostgresService) Migrate(embeddingDim int) error {
	s.log.Info("auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("auto migration failed", "error", err)
		return err
	}
	s.log.Info("ensuring vector column...", "dim", embeddingDim)
	if err := EnsureVectorColumn(s.db, embeddingDim); err != nil {
		s.log.Error("vector column bootstrap failed", "error", err)
		return err
	}
	return nil
}
