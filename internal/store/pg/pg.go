// Package pg implements the Store contract on Postgres with the pgvector
// extension. Scoring still happens in-process; the vector column is storage,
// not an index.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"knowledge-inbox/internal/config"
	"knowledge-inbox/internal/models"
	"knowledge-inbox/internal/store"
)

type itemRow struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID         string    `bun:"id,pk"`
	Content    string    `bun:"content,notnull"`
	SourceType string    `bun:"source_type,notnull"`
	SourceURL  string    `bun:"source_url"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

type chunkRow struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID         string          `bun:"id,pk"`
	ItemID     string          `bun:"item_id,notnull"`
	Content    string          `bun:"content,notnull"`
	Embedding  pgvector.Vector `bun:"embedding,notnull,type:vector(384)"`
	ChunkIndex int             `bun:"chunk_index,notnull"`
}

var _ store.Store = (*Store)(nil)

type Store struct {
	db *bun.DB
}

func Connect(cfg *config.DatabaseConfig) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN), pgdriver.WithPassword(cfg.Password)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func New(db *bun.DB) *Store { return &Store{db: db} }

// Init creates the schema. Chunks cascade on item deletion.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*itemRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	if _, err := s.db.NewCreateTable().Model((*chunkRow)(nil)).IfNotExists().
		ForeignKey(`("item_id") REFERENCES "items" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create chunks table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().Model((*chunkRow)(nil)).
		Index("idx_chunks_item_id").Column("item_id").IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create chunks index: %w", err)
	}
	return nil
}

func (s *Store) PutItem(ctx context.Context, item *models.Item) error {
	row := &itemRow{
		ID:         item.ID,
		Content:    item.Content,
		SourceType: string(item.SourceType),
		SourceURL:  item.SourceURL,
		CreatedAt:  item.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *Store) PutChunk(ctx context.Context, chunk *models.Chunk) error {
	row := &chunkRow{
		ID:         chunk.ID,
		ItemID:     chunk.ItemID,
		Content:    chunk.Content,
		Embedding:  pgvector.NewVector(chunk.Embedding),
		ChunkIndex: chunk.ChunkIndex,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

func (s *Store) GetAllChunkVectors(ctx context.Context) ([]models.ChunkVector, error) {
	var rows []chunkRow
	if err := s.db.NewSelect().Model(&rows).Column("id", "content", "embedding").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select chunk vectors: %w", err)
	}
	vectors := make([]models.ChunkVector, len(rows))
	for i, row := range rows {
		vectors[i] = models.ChunkVector{ID: row.ID, Content: row.Content, Embedding: row.Embedding.Slice()}
	}
	return vectors, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*models.Item, error) {
	row := new(itemRow)
	err := s.db.NewSelect().Model(row).Where("i.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select item: %w", err)
	}
	return &models.Item{
		ID:         row.ID,
		Content:    row.Content,
		SourceType: models.SourceType(row.SourceType),
		SourceURL:  row.SourceURL,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func (s *Store) GetChunksForItem(ctx context.Context, itemID string) ([]models.Chunk, error) {
	var rows []chunkRow
	err := s.db.NewSelect().Model(&rows).Where("c.item_id = ?", itemID).OrderExpr("c.chunk_index ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}
	chunks := make([]models.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = models.Chunk{
			ID:         row.ID,
			ItemID:     row.ItemID,
			Content:    row.Content,
			Embedding:  row.Embedding.Slice(),
			ChunkIndex: row.ChunkIndex,
		}
	}
	return chunks, nil
}

func (s *Store) ListItems(ctx context.Context) ([]models.ItemSummary, error) {
	var rows []struct {
		ID         string    `bun:"id"`
		SourceType string    `bun:"source_type"`
		SourceURL  string    `bun:"source_url"`
		Preview    string    `bun:"preview"`
		CreatedAt  time.Time `bun:"created_at"`
	}
	err := s.db.NewSelect().Model((*itemRow)(nil)).
		Column("id", "source_type", "source_url", "created_at").
		ColumnExpr("substr(content, 1, 200) AS preview").
		OrderExpr("created_at DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	summaries := make([]models.ItemSummary, len(rows))
	for i, row := range rows {
		summaries[i] = models.ItemSummary{
			ID:         row.ID,
			SourceType: models.SourceType(row.SourceType),
			SourceURL:  row.SourceURL,
			Preview:    row.Preview,
			CreatedAt:  row.CreatedAt,
		}
	}
	return summaries, nil
}
