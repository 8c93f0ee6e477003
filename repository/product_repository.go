package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"layerlight-storefront/models"
)

// ProductRepository reads products with their options and variants
type ProductRepository struct {
	conn   *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(conn *sql.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{conn: conn, logger: logger}
}

// Ensure ProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*ProductRepository)(nil)

const productColumns = `p.id, p.gid, p.handle, p.title, p.description, p.description_html, p.featured_image`

// GetByHandle returns one product or ErrProductNotFound
func (r *ProductRepository) GetByHandle(ctx context.Context, handle string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.handle = $1`
	products, err := r.queryProducts(ctx, query, handle)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return &products[0], nil
}

// Search returns products whose title contains term, ordered by title
func (r *ProductRepository) Search(ctx context.Context, term string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p
		WHERE $1 = '' OR p.title ILIKE '%' || $1 || '%'
		ORDER BY p.title, p.id`
	return r.queryProducts(ctx, query, escapeLike(strings.TrimSpace(term)))
}

// ListByCollection returns the products of a collection in collection order
func (r *ProductRepository) ListByCollection(ctx context.Context, collectionHandle string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p
		JOIN collection_products cp ON cp.product_id = p.id
		JOIN collections c ON c.id = cp.collection_id
		WHERE c.handle = $1
		ORDER BY cp.position, p.title`
	return r.queryProducts(ctx, query, collectionHandle)
}

// queryProducts runs a product query and attaches options and variants
func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var (
		products []models.Product
		ids      []int64
	)
	for rows.Next() {
		var (
			id int64
			p  models.Product
		)
		if err := rows.Scan(&id, &p.ID, &p.Handle, &p.Title, &p.Description, &p.DescriptionHTML, &p.FeaturedImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	options, err := r.loadOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	variants, err := r.loadVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		products[i].Options = options[id]
		products[i].Variants = variants[id]
	}

	r.logger.Debug("loaded products", zap.Int("count", len(products)))
	return products, nil
}

// loadOptions returns declared options per product id, values in declared order
func (r *ProductRepository) loadOptions(ctx context.Context, productIDs []int64) (map[int64][]models.ProductOption, error) {
	query := `
		SELECT o.product_id, o.id, o.gid, o.name, COALESCE(v.value, '')
		FROM product_options o
		LEFT JOIN product_option_values v ON v.option_id = o.id
		WHERE o.product_id = ANY($1)
		ORDER BY o.product_id, o.position, v.position`
	rows, err := r.conn.QueryContext(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query product options: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.ProductOption)
	lastOption := int64(-1)
	for rows.Next() {
		var (
			productID, optionID int64
			gid, name, value    string
		)
		if err := rows.Scan(&productID, &optionID, &gid, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan product option: %w", err)
		}
		if optionID != lastOption {
			out[productID] = append(out[productID], models.ProductOption{ID: gid, Name: name})
			lastOption = optionID
		}
		if value != "" {
			opts := out[productID]
			opts[len(opts)-1].Values = append(opts[len(opts)-1].Values, value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product options: %w", err)
	}
	return out, nil
}

// loadVariants returns variants per product id with their selected options
func (r *ProductRepository) loadVariants(ctx context.Context, productIDs []int64) (map[int64][]models.Variant, error) {
	query := `
		SELECT pv.product_id, pv.id, pv.gid, pv.title, pv.available_for_sale, pv.price_amount, pv.currency_code,
		       COALESCE(so.name, ''), COALESCE(so.value, '')
		FROM product_variants pv
		LEFT JOIN variant_selected_options so ON so.variant_id = pv.id
		WHERE pv.product_id = ANY($1)
		ORDER BY pv.product_id, pv.position, so.position`
	rows, err := r.conn.QueryContext(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.Variant)
	lastVariant := int64(-1)
	for rows.Next() {
		var (
			productID, variantID int64
			v                    models.Variant
			optName, optValue    string
		)
		if err := rows.Scan(&productID, &variantID, &v.ID, &v.Title, &v.AvailableForSale,
			&v.Price.Amount, &v.Price.CurrencyCode, &optName, &optValue); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		if variantID != lastVariant {
			out[productID] = append(out[productID], v)
			lastVariant = variantID
		}
		if optName != "" {
			vs := out[productID]
			vs[len(vs)-1].SelectedOptions = append(vs[len(vs)-1].SelectedOptions, models.SelectedOption{Name: optName, Value: optValue})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}
	return out, nil
}

// escapeLike escapes ILIKE wildcards so the term matches literally
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

// IsNotFound reports whether err means the product does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, sql.ErrNoRows)
}
