package services

import (
	"context"
	"fmt"
	"strings"

	"phoneempire/internal/domain"
	"phoneempire/internal/repos"
	"phoneempire/internal/validate"
)

const defaultCategory = "iPhone"

var priceReason = fmt.Sprintf("must be between 0 and %d", validate.MaxPrice)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// ProductInput is the admin form: every field is resent on update.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *int64   `json:"price"`
	Discount    *float64 `json:"discount"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
}

func (in ProductInput) toProduct() (domain.Product, error) {
	ve := &ValidationError{}
	p := domain.Product{
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
	}

	if name, ok := validate.Required(in.Name, 255); ok {
		p.Name = name
	} else {
		ve.add("name", "required, at most 255 characters")
	}
	switch {
	case in.Price == nil:
		ve.add("price", "required")
	case !validate.Price(*in.Price):
		ve.add("price", priceReason)
	default:
		p.Price = *in.Price
	}
	if in.Discount != nil {
		if !validate.Discount(*in.Discount) {
			ve.add("discount", "must be between 0 and 100")
		} else {
			p.Discount = *in.Discount
		}
	}
	if img, ok := validate.Image(in.Image); ok {
		p.Image = img
	} else {
		ve.add("image", "required: http(s) URL or base64 data URI")
	}
	if p.Category == "" {
		p.Category = defaultCategory
	}
	return p, ve.errOrNil()
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.Prods.List(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if repos.IsNotFound(err) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Create(ctx, p)
}

// Update replaces all fields of product id with in.
func (s *CatalogService) Update(ctx context.Context, id int64, in ProductInput) (domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	out, err := s.Prods.Update(ctx, p)
	if repos.IsNotFound(err) {
		return domain.Product{}, ErrNotFound
	}
	return out, err
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	err := s.Prods.Delete(ctx, id)
	if repos.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
