package salesreport

// statsIndex owns the per-seller accumulators for one run and the read-only
// product lookup. order keeps the sellers in input order until ranking.
type statsIndex struct {
	order    []*Accumulator
	sellers  map[string]*Accumulator
	products map[string]Product
}

func newStatsIndex(data *Dataset) *statsIndex {
	idx := &statsIndex{
		order:    make([]*Accumulator, 0, len(data.Sellers)),
		sellers:  make(map[string]*Accumulator, len(data.Sellers)),
		products: make(map[string]Product, len(data.Products)),
	}
	for _, seller := range data.Sellers {
		acc := newAccumulator(seller)
		idx.order = append(idx.order, acc)
		idx.sellers[seller.ID] = acc
	}
	for _, product := range data.Products {
		idx.products[product.SKU] = product
	}
	return idx
}

func (idx *statsIndex) seller(id string) (*Accumulator, bool) {
	acc, ok := idx.sellers[id]
	return acc, ok
}

func (idx *statsIndex) product(sku string) (Product, bool) {
	p, ok := idx.products[sku]
	return p, ok
}
