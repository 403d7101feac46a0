package catalog

import (
	"context"

	"github.com/invoicing/backend/internal/domain/catalog"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles catalog product operations
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a new catalog product
func (s *ProductService) Create(ctx context.Context, orgID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(orgID, req.Name, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if !req.TaxRate.IsZero() {
		if err := product.SetTaxRate(req.TaxRate); err != nil {
			return nil, err
		}
	}
	product.Description = req.Description
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	product.SKU = req.SKU

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product
func (s *ProductService) GetByID(ctx context.Context, orgID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves products with pagination; Search matches name and SKU
func (s *ProductService) List(ctx context.Context, orgID uuid.UUID, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search
	if filter.Active != nil {
		f.Filters["is_active"] = *filter.Active
	}

	products, err := s.productRepo.FindAllForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountForOrg(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, ToProductResponse(&products[i]))
	}
	result := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &result, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, orgID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.UnitPrice != nil {
		if err := product.SetUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := product.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Unit != nil && *req.Unit != "" {
		product.Unit = *req.Unit
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.IsActive != nil {
		if *req.IsActive {
			product.IsActive = true
		} else {
			product.Archive()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product. Line items copied from it keep their values,
// so history is unaffected.
func (s *ProductService) Delete(ctx context.Context, orgID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByIDForOrg(ctx, orgID, productID); err != nil {
		return err
	}
	return s.productRepo.DeleteForOrg(ctx, orgID, productID)
}
