package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/weiwei-tsao/gold-catalog/pkg/model"
	"github.com/weiwei-tsao/gold-catalog/pkg/util"
	"google.golang.org/api/iterator"
)

// ProductsCollection holds one document per catalog position.
const ProductsCollection = "products"

// productDoc is the stored shape of a catalog entry; position keeps catalog order.
type productDoc struct {
	Position        int                 `firestore:"position"`
	Name            string              `firestore:"name"`
	PopularityScore float64             `firestore:"popularityScore"`
	Weight          float64             `firestore:"weight"`
	Images          model.ProductImages `firestore:"images"`
}

func toDoc(position int, p model.Product) productDoc {
	return productDoc{
		Position:        position,
		Name:            p.Name,
		PopularityScore: p.PopularityScore,
		Weight:          p.Weight,
		Images:          p.Images,
	}
}

func (d productDoc) product() model.Product {
	return model.Product{
		Name:            d.Name,
		PopularityScore: d.PopularityScore,
		Weight:          d.Weight,
		Images:          d.Images,
	}
}

// CatalogRepository handles Firestore read/write for the product catalog.
type CatalogRepository struct {
	client *firestore.Client
}

func NewCatalogRepository(client *firestore.Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

// List loads the catalog in position order.
func (r *CatalogRepository) List(ctx context.Context) ([]model.Product, error) {
	iter := r.client.Collection(ProductsCollection).OrderBy("position", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var result []model.Product
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate products: %w", err)
		}
		var d productDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", doc.Ref.ID, err)
		}
		result = append(result, d.product())
	}
	return result, nil
}

// ReplaceAll writes the catalog in batches and deletes documents no longer in it.
// It returns how many documents were written and deleted.
func (r *CatalogRepository) ReplaceAll(ctx context.Context, products []model.Product) (int, int, error) {
	keep := make(map[string]struct{}, len(products))
	for i, p := range products {
		keep[util.ProductKey(i, p.Name)] = struct{}{}
	}

	existing, err := r.client.Collection(ProductsCollection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, 0, fmt.Errorf("list product refs: %w", err)
	}
	var stale []*firestore.DocumentRef
	for _, ref := range existing {
		if _, ok := keep[ref.ID]; !ok {
			stale = append(stale, ref)
		}
	}

	const batchSize = 400

	for start := 0; start < len(products); start += batchSize {
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := r.client.Batch()
		for i := start; i < end; i++ {
			ref := r.client.Collection(ProductsCollection).Doc(util.ProductKey(i, products[i].Name))
			batch.Set(ref, toDoc(i, products[i]))
		}
		if _, err := batch.Commit(ctx); err != nil {
			return start, 0, fmt.Errorf("commit batch [%d:%d]: %w", start, end, err)
		}
	}

	for start := 0; start < len(stale); start += batchSize {
		end := start + batchSize
		if end > len(stale) {
			end = len(stale)
		}
		batch := r.client.Batch()
		for _, ref := range stale[start:end] {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return len(products), start, fmt.Errorf("delete stale batch [%d:%d]: %w", start, end, err)
		}
	}
	return len(products), len(stale), nil
}
