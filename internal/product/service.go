package product

import (
	"context"

	"product_api/internal/auth"
	"product_api/internal/queue"

	"github.com/sirupsen/logrus"
)

type ProductServiceInterface interface {
	ListProducts(ctx context.Context, plan ListingPlan) (*ListingPage, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, in Input) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in Input) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ProductService struct {
	repo      Repository
	publisher queue.Publisher
}

func NewProductService(repo Repository, publisher queue.Publisher) *ProductService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &ProductService{repo: repo, publisher: publisher}
}

func (s *ProductService) ListProducts(ctx context.Context, plan ListingPlan) (*ListingPage, error) {
	if !plan.Paginated {
		products, err := s.repo.List(ctx, 0, 0)
		if err != nil {
			return nil, err
		}
		total := int64(len(products))
		return &ListingPage{
			Page:          1,
			Limit:         len(products),
			TotalProducts: total,
			TotalPages:    1,
			Products:      summarize(products),
		}, nil
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.List(ctx, plan.Skip(), plan.Limit)
	if err != nil {
		return nil, err
	}

	return &ListingPage{
		Page:          plan.Page,
		Limit:         plan.Limit,
		TotalProducts: total,
		TotalPages:    TotalPages(total, plan.Limit),
		Products:      summarize(products),
	}, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) CreateProduct(ctx context.Context, in Input) (*Product, error) {
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.ProductCreated, p.ID)
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in Input) (*Product, error) {
	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.ProductUpdated, p.ID)
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, queue.ProductDeleted, id)
	return nil
}

// publish never fails the request; the mutation is already durable.
func (s *ProductService) publish(ctx context.Context, t queue.EventType, id string) {
	event := queue.NewEvent(t, id, auth.ActorID(ctx))
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":      t,
			"product_id": id,
		}).Warn("Failed to publish product event")
	}
}

func summarize(products []*Product) []Summary {
	out := make([]Summary, 0, len(products))
	for _, p := range products {
		out = append(out, p.Summary())
	}
	return out
}
