// Package service implements the bounded store snapshot reader.
package service

import (
	"context"
	"math"

	"github.com/bwmarrin/snowflake"
	storedomain "github.com/seology-ai/seology/internal/store/domain"
	"github.com/seology-ai/seology/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fetch caps per spec; the prompt assembler applies its own tighter display
// caps on top of these.
const (
	ProductFetchCap    = 100
	FixFetchCap        = 20
	IssueFetchCap      = 30
	CollectionFetchCap = 20
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	productrepo    repository.Repository[storedomain.Product]
	collectionrepo repository.Repository[storedomain.Collection]
	fixrepo        repository.Repository[storedomain.Fix]
	issuerepo      repository.Repository[storedomain.Issue]
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("store.snapshot"),

		productrepo:    repository.ProvideStore[storedomain.Product](p.DB),
		collectionrepo: repository.ProvideStore[storedomain.Collection](p.DB),
		fixrepo:        repository.ProvideStore[storedomain.Fix](p.DB),
		issuerepo:      repository.ProvideStore[storedomain.Issue](p.DB),
	}
}

// Read returns the bounded snapshot for a connection: worst-scored products
// first, most recent fixes and issues first.
//
// On any query failure it returns (nil, nil): the caller answers with a
// generic apology instead of failing the request. This soft-fail masks real
// database outages from the chat client, so the warn log here is the only
// trace of the outage.
func (s *Service) Read(ctx context.Context, connectionID snowflake.ID) (*storedomain.Snapshot, error) {
	products, err := s.productrepo.Find(ctx,
		&storedomain.Product{ConnectionID: connectionID},
		repository.WithOrder("seo_score ASC"),
		repository.WithLimit(ProductFetchCap),
	)
	if err != nil {
		s.log.Warn("snapshot products read failed", zap.Error(err))
		return nil, nil
	}

	collections, err := s.collectionrepo.Find(ctx,
		&storedomain.Collection{ConnectionID: connectionID},
		repository.WithOrder("product_count DESC"),
		repository.WithLimit(CollectionFetchCap),
	)
	if err != nil {
		s.log.Warn("snapshot collections read failed", zap.Error(err))
		return nil, nil
	}

	fixes, err := s.fixrepo.Find(ctx,
		&storedomain.Fix{ConnectionID: connectionID},
		repository.WithOrder("applied_at DESC"),
		repository.WithLimit(FixFetchCap),
	)
	if err != nil {
		s.log.Warn("snapshot fixes read failed", zap.Error(err))
		return nil, nil
	}

	issues, err := s.issuerepo.Find(ctx,
		&storedomain.Issue{ConnectionID: connectionID},
		repository.WithOrder("detected_at DESC"),
		repository.WithLimit(IssueFetchCap),
	)
	if err != nil {
		s.log.Warn("snapshot issues read failed", zap.Error(err))
		return nil, nil
	}

	snapshot := &storedomain.Snapshot{
		Products:    dereference(products),
		Collections: dereference(collections),
		Fixes:       dereference(fixes),
		Issues:      dereference(issues),
	}
	snapshot.Analytics = buildAnalytics(snapshot)
	return snapshot, nil
}

// buildAnalytics derives the summary from the fetched slices. The average
// score is computed over the fetched (capped, worst-first) subset, not the
// full catalog; for catalogs above the fetch cap it understates the true
// average. Kept as-is: the product treats the snapshot as a worst-case view.
func buildAnalytics(snapshot *storedomain.Snapshot) storedomain.Analytics {
	analytics := storedomain.Analytics{
		ProductCount: len(snapshot.Products),
	}

	if len(snapshot.Products) > 0 {
		total := 0
		for _, product := range snapshot.Products {
			total += product.SEOScore
		}
		analytics.AvgScore = int(math.Round(float64(total) / float64(len(snapshot.Products))))
	}

	for _, fix := range snapshot.Fixes {
		if fix.Status == storedomain.FixStatusApplied {
			analytics.AppliedFixCount++
		}
	}
	for _, issue := range snapshot.Issues {
		if issue.Status == storedomain.IssueStatusDetected {
			analytics.DetectedIssueCount++
		}
	}
	return analytics
}

func dereference[T any](items []*T) []T {
	records := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}
	return records
}
