package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"declaration-service/internal/models"
	"declaration-service/shared/utils"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidDeclaration = errors.New("invalid declaration")

const (
	declarationListKeyPrefix = "declarations--list--"
	inboundSearchLimit       = 50
)

type DeclarationStore interface {
	CreateDeclaration(ctx context.Context, d *models.Declaration) error
	GetDeclarationByID(ctx context.Context, id int64) (*models.Declaration, error)
	SearchApprovedInbound(ctx context.Context, search string, limit int) ([]models.InboundDeclarationSummary, error)
	FindApprovedInboundIDs(ctx context.Context, ids []int64) ([]int64, error)
	SetCachedList(ctx context.Context, key string, data []byte, expiration time.Duration) error
	GetCachedList(ctx context.Context, key string) ([]byte, error)
	DeleteCachedLists(ctx context.Context, pattern string) error
}

type DeclarationService struct {
	repo         DeclarationStore
	listCacheTTL time.Duration
}

// NewDeclarationService creates a new declaration service
func NewDeclarationService(repo DeclarationStore, listCacheTTL time.Duration) *DeclarationService {
	return &DeclarationService{repo: repo, listCacheTTL: listCacheTTL}
}

func inboundListKey(search string) string {
	return declarationListKeyPrefix + "inbound--" + strings.ToLower(strings.TrimSpace(search))
}

// SearchInbound returns the approved inbound declarations an outbound one may
// be based on. Results are cached per search term.
func (s *DeclarationService) SearchInbound(ctx context.Context, search string) ([]models.InboundDeclarationSummary, error) {
	key := inboundListKey(search)

	cached, err := s.repo.GetCachedList(ctx, key)
	if err == nil {
		var summaries []models.InboundDeclarationSummary
		if err := utils.DeserializeModel(cached, &summaries); err == nil {
			return summaries, nil
		}
		slog.Warn("discarding unreadable declaration list cache", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("declaration list cache unavailable", "key", key, "error", err)
	}

	summaries, err := s.repo.SearchApprovedInbound(ctx, search, inboundSearchLimit)
	if err != nil {
		return nil, err
	}

	if data, err := utils.SerializeModel(summaries); err == nil {
		if err := s.repo.SetCachedList(ctx, key, data, s.listCacheTTL); err != nil {
			slog.Warn("failed to cache declaration list", "key", key, "error", err)
		}
	}
	return summaries, nil
}

// GetDeclaration returns a declaration with its items and documents.
func (s *DeclarationService) GetDeclaration(ctx context.Context, id int64) (*models.Declaration, error) {
	return s.repo.GetDeclarationByID(ctx, id)
}

// CreateOutbound validates and persists an outbound declaration on behalf of
// userID.
func (s *DeclarationService) CreateOutbound(ctx context.Context, userID string, req models.CreateDeclarationRequest) (*models.Declaration, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDeclaration, err.Error())
	}

	d := declarationFromRequest(req)
	if userID != "" {
		d.CreatedBy = &userID
	}

	if req.ExistingBased != nil {
		ids := slices.Clone(req.ExistingBased.BasedOnDeclarationIDs)
		slices.Sort(ids)
		ids = slices.Compact(ids)

		found, err := s.repo.FindApprovedInboundIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		if len(found) != len(ids) {
			missing := slices.DeleteFunc(ids, func(id int64) bool { return slices.Contains(found, id) })
			return nil, fmt.Errorf("%w: declarations %v are not approved inbound declarations", ErrInvalidDeclaration, missing)
		}
		d.BasedOnDeclarationIDs = pq.Int64Array(ids)
	}

	if err := s.repo.CreateDeclaration(ctx, d); err != nil {
		return nil, err
	}

	if err := s.repo.DeleteCachedLists(ctx, declarationListKeyPrefix+"*"); err != nil {
		slog.Warn("failed to invalidate declaration list cache", "error", err)
	}
	return d, nil
}

func declarationFromRequest(req models.CreateDeclarationRequest) *models.Declaration {
	refs := req.References()
	d := &models.Declaration{
		Type:             models.DeclarationOutbound,
		Status:           refs.Status,
		CustomerID:       &refs.CustomerID,
		CustomerPONumber: refs.CustomerPONumber,
		SONumber:         refs.SONumber,
		ShipmentNumber:   refs.ShipmentNumber,
		StartDate:        refs.StartDate,
		EndDate:          refs.EndDate,
		Comments:         refs.Comments,
		GeoJSONFile:      refs.GeoJSONFile,
	}
	for _, objectName := range refs.EvidenceDocuments {
		d.Documents = append(d.Documents, models.DeclarationDocument{ObjectName: objectName})
	}

	if p := req.Fresh; p != nil {
		d.ProductName = &p.ProductName
		d.HSNCode = &p.HSNCode
		d.ScientificName = p.ScientificName
		d.Quantity = &p.Quantity
		d.Unit = &p.Unit
		for _, item := range p.Items {
			d.Items = append(d.Items, models.DeclarationItem{
				HSNCode:        item.HSNCode,
				ProductName:    item.ProductName,
				ScientificName: item.ScientificName,
				Quantity:       item.Quantity,
				Unit:           item.Unit,
				RMID:           item.RMID,
			})
		}
	}
	return d
}
