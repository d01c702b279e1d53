package domain

// ProductView é a forma externa (normalizada) de um Produto: identificadores
// como string, datas como texto RFC3339 e coleções opcionais sempre
// presentes (nunca nil). É a única forma consumida pela apresentação e
// pelo agregador de analytics.
type ProductView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	UnitsSold   int        `json:"units_sold"`
	Images      []string   `json:"images"`
	Sales       []SaleView `json:"sales"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// SaleView é a forma externa de uma venda embutida em ProductView.
type SaleView struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Quantity    int     `json:"quantity"`
	PriceAtSale float64 `json:"price_at_sale"`
}
