package domain

import (
	"time"
)

// Product representa o item principal do catálogo (a Entidade).
// O estoque e o histórico de vendas são controlados a nível de Produto:
// o campo UnitsSold é mantido de forma incremental pelo Ledger e deve
// sempre ser igual à soma das quantidades em Sales.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	UnitsSold   int       `json:"units_sold"`
	Images      []string  `json:"images"`
	Sales       []Sale    `json:"sales"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Categorias reconhecidas na criação de produtos.
// A validação acontece apenas na escrita: registros antigos podem carregar
// categorias arbitrárias, e as camadas de leitura/agregação não devem
// assumir este conjunto.
const (
	CategoryElectronic    = "electronic"
	CategoryClothing      = "clothing"
	CategoryStationary    = "stationary"
	CategoryBathEssential = "bath essential"
	CategoryBeauty        = "beauty"
)

// ValidCategories lista as categorias aceitas no cadastro de um novo produto.
var ValidCategories = []string{
	CategoryElectronic,
	CategoryClothing,
	CategoryStationary,
	CategoryBathEssential,
	CategoryBeauty,
}

// IsValidCategory verifica se a categoria informada pertence ao conjunto
// reconhecido para cadastro.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ProductUpdate representa o payload de atualização parcial de um produto.
// Campos nil não são alterados. UnitsSold e Sales nunca são atualizáveis
// por aqui: só o Ledger os modifica.
type ProductUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}
