package domain

// Limiares fixos de estoque. Os dois valores de "estoque baixo" são
// deliberadamente independentes: o painel conta produtos com estoque <= 5,
// enquanto o bucket "Low Stock" do relatório usa a faixa 0 < estoque <= 10.
const (
	HealthyStockFloor          = 10 // saudável: estoque > 10
	DashboardLowStockThreshold = 5  // painel: estoque <= 5
)

// Nomes fixos dos buckets de saúde de estoque.
const (
	BucketHealthyStock = "Healthy Stock"
	BucketLowStock     = "Low Stock"
	BucketOutOfStock   = "Out of Stock"
)

// CategoryStock é o estoque somado de uma categoria (como armazenada).
type CategoryStock struct {
	Category string `json:"category"`
	Stock    int    `json:"stock"`
}

// StockHealthBucket é a contagem de produtos dentro de uma faixa fixa de
// saúde de estoque.
type StockHealthBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthRevenue é a receita agregada de um bucket de mês-calendário,
// derivado do created_at dos produtos.
type MonthRevenue struct {
	Month   string  `json:"month"` // Rótulo legível, ex: "Jan 2026"
	Revenue float64 `json:"revenue"`
}

// AnalyticsReport agrupa todas as facetas calculadas sobre a mesma
// população de produtos. Nenhuma faceta depende do resultado de outra.
type AnalyticsReport struct {
	TotalRevenue   float64             `json:"total_revenue"`
	TotalUnitsSold int                 `json:"total_units_sold"`
	InventoryValue float64             `json:"inventory_value"`
	CategoryStock  []CategoryStock     `json:"category_stock"`
	StockHealth    []StockHealthBucket `json:"stock_health"`
	RevenueTrend   []MonthRevenue      `json:"revenue_trend"`
	TopSellers     []ProductView       `json:"top_sellers"`
}

// DashboardStats são os contadores do painel inicial. O limiar de lowStock
// (estoque <= 5) é independente do bucket "Low Stock" do relatório de
// analytics (estoque <= 10); os dois não devem ser unificados.
type DashboardStats struct {
	TotalProducts   int `json:"total_products"`
	TotalCategories int `json:"total_categories"`
	LowStock        int `json:"low_stock"`
}
