package domain

import "time"

// Sale representa uma transação de venda registrada contra um Produto.
// Registros de venda pertencem exclusivamente ao Produto pai, são
// criados apenas pelo Ledger e nunca alterados depois de gravados.
type Sale struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Date        time.Time `json:"date"`
	Quantity    int       `json:"quantity"`
	PriceAtSale float64   `json:"price_at_sale"` // Preço unitário congelado no momento da venda
}

// SaleRequest é o payload esperado para o registro de uma venda.
type SaleRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
