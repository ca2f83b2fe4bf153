package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"declaration-service/internal/models"
	"declaration-service/shared/utils"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("record not found")

type DeclarationRepository struct {
	db          *sqlx.DB
	redisClient *redis.Client
}

func NewDeclarationRepository(db *sqlx.DB, redisClient *redis.Client) *DeclarationRepository {
	return &DeclarationRepository{
		db:          db,
		redisClient: redisClient,
	}
}

const declarationColumns = `
	id, type, status, product_name, hsn_code, scientific_name, quantity, unit,
	customer_id, supplier_name, customer_po_number, so_number, shipment_number,
	start_date, end_date, comments, based_on_declaration_ids, geojson_file,
	created_by, created_at, updated_at`

// CreateDeclaration inserts the declaration with its items and documents in a
// single transaction and fills in the generated ids and timestamps.
func (r *DeclarationRepository) CreateDeclaration(ctx context.Context, d *models.Declaration) error {
	slog.Info("Creating declaration",
		"type", d.Type,
		"status", d.Status,
		"customer_id", d.CustomerID,
		"items", len(d.Items),
		"documents", len(d.Documents))
	start := time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Error("Failed to rollback declaration transaction", "error", rbErr)
			}
		}
	}()

	if d.BasedOnDeclarationIDs == nil {
		d.BasedOnDeclarationIDs = pq.Int64Array{}
	}

	query := `
		INSERT INTO declarations (
			type, status, product_name, hsn_code, scientific_name, quantity, unit,
			customer_id, supplier_name, customer_po_number, so_number, shipment_number,
			start_date, end_date, comments, based_on_declaration_ids, geojson_file, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		d.Type, d.Status, d.ProductName, d.HSNCode, d.ScientificName, d.Quantity, d.Unit,
		d.CustomerID, d.SupplierName, d.CustomerPONumber, d.SONumber, d.ShipmentNumber,
		d.StartDate, d.EndDate, d.Comments, d.BasedOnDeclarationIDs, d.GeoJSONFile, d.CreatedBy,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		err = fmt.Errorf("failed to insert declaration: %w", err)
		return err
	}

	for i := range d.Items {
		item := &d.Items[i]
		item.DeclarationID = d.ID
		item.Position = i
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO declaration_items (
				declaration_id, position, hsn_code, product_name, scientific_name, quantity, unit, rm_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			item.DeclarationID, item.Position, item.HSNCode, item.ProductName,
			item.ScientificName, item.Quantity, item.Unit, item.RMID,
		).Scan(&item.ID)
		if err != nil {
			err = fmt.Errorf("failed to insert declaration item %d: %w", i, err)
			return err
		}
	}

	for i := range d.Documents {
		doc := &d.Documents[i]
		doc.DeclarationID = d.ID
		err = utils.ExecWithCheck(ctx, tx,
			`INSERT INTO declaration_documents (declaration_id, object_name) VALUES ($1, $2)`,
			utils.ExecInsert, doc.DeclarationID, doc.ObjectName)
		if err != nil {
			err = fmt.Errorf("failed to insert declaration document %q: %w", doc.ObjectName, err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit declaration: %w", err)
		return err
	}

	slog.Info("Successfully created declaration",
		"declaration_id", d.ID,
		"duration", time.Since(start))
	return nil
}

func (r *DeclarationRepository) GetDeclarationByID(ctx context.Context, id int64) (*models.Declaration, error) {
	var d models.Declaration
	err := r.db.GetContext(ctx, &d, `SELECT `+declarationColumns+` FROM declarations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("declaration %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get declaration: %w", err)
	}

	err = r.db.SelectContext(ctx, &d.Items, `
		SELECT id, declaration_id, position, hsn_code, product_name, scientific_name, quantity, unit, rm_id
		FROM declaration_items
		WHERE declaration_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get declaration items: %w", err)
	}

	err = r.db.SelectContext(ctx, &d.Documents, `
		SELECT id, declaration_id, object_name, created_at
		FROM declaration_documents
		WHERE declaration_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get declaration documents: %w", err)
	}

	return &d, nil
}

// SearchApprovedInbound lists approved inbound declarations whose product name
// or HSN code contains search. An empty search lists everything.
func (r *DeclarationRepository) SearchApprovedInbound(ctx context.Context, search string, limit int) ([]models.InboundDeclarationSummary, error) {
	query := `
		SELECT id, COALESCE(product_name, '') AS product_name, COALESCE(hsn_code, '') AS hsn_code,
			status, COALESCE(quantity, 0) AS quantity, COALESCE(unit, '') AS unit, supplier_name, created_at
		FROM declarations
		WHERE type = $1 AND status = $2
			AND (product_name ILIKE $3 OR hsn_code ILIKE $3)
		ORDER BY created_at DESC
		LIMIT $4`

	summaries := []models.InboundDeclarationSummary{}
	err := r.db.SelectContext(ctx, &summaries, query,
		models.DeclarationInbound, models.DeclarationApproved, utils.ContainsPattern(search), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search inbound declarations: %w", err)
	}
	return summaries, nil
}

// FindApprovedInboundIDs returns which of ids belong to approved inbound
// declarations.
func (r *DeclarationRepository) FindApprovedInboundIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found := []int64{}
	err := r.db.SelectContext(ctx, &found, `
		SELECT id FROM declarations
		WHERE id = ANY($1) AND type = $2 AND status = $3
		ORDER BY id`,
		pq.Array(ids), models.DeclarationInbound, models.DeclarationApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to check based-on declarations: %w", err)
	}
	return found, nil
}

// ============================================================================
// LIST CACHE (redis)
// ============================================================================

func (r *DeclarationRepository) SetCachedList(ctx context.Context, key string, data []byte, expiration time.Duration) error {
	return r.redisClient.Set(ctx, key, data, expiration).Err()
}

// GetCachedList returns redis.Nil when the key is absent.
func (r *DeclarationRepository) GetCachedList(ctx context.Context, key string) ([]byte, error) {
	return r.redisClient.Get(ctx, key).Bytes()
}

func (r *DeclarationRepository) DeleteCachedLists(ctx context.Context, pattern string) error {
	keys, err := r.FindKeysByPattern(ctx, pattern)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.redisClient.Del(ctx, keys...).Err()
}

func (r *DeclarationRepository) FindKeysByPattern(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	iter := r.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return keys, nil
}
