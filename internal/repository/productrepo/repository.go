package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"govendas/internal/domain"
	"govendas/internal/errors"
	"govendas/internal/pkg/cache"
	"govendas/internal/pkg/logger"
)

// Define a chave de cache para produtos.
const productCacheKey = "product:%s"

// ProductRepository é a camada de acesso a dados de produtos e vendas.
// Vendas pertencem ao produto: todas as operações de escrita sobre elas
// passam por aqui, dentro da mesma transação que mexe no estoque.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Save persiste um novo Produto no banco de dados.
// Produtos novos nascem sem vendas e com units_sold zerado.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const productSQL = `
		INSERT INTO products (id, name, description, category, price, stock, units_sold, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctxTimeout, productSQL,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.Stock,
		product.UnitsSold,
		pq.Array(product.Images),
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao inserir produto", err)
	}

	return product, nil
}

// FindByID busca um produto (com suas vendas) pelo ID, utilizando a
// estratégia Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// --- 1. Estratégia Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			// Cache HIT
			return product, nil
		}
		// Se a desserialização falhar, segue para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos e seguimos para o DB.
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// --- 2. Busca no Banco de Dados (PostgreSQL) ---
	const productSQL = `
		SELECT id, name, description, category, price, stock, units_sold, images, created_at, updated_at
		FROM products
		WHERE id = $1`

	row := r.DB.QueryRowContext(ctxTimeout, productSQL, id)
	err = row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.UnitsSold,
		pq.Array(&product.Images),
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto no DB", err)
	}

	product.Sales, err = r.findSalesByProduct(ctxTimeout, id)
	if err != nil {
		return domain.Product{}, err
	}

	// --- 3. Estratégia Cache-Aside (WRITE) ---
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll retorna a população completa de produtos, com as vendas
// embutidas em ordem de registro. É a entrada do agregador de analytics,
// sempre lida fresca (sem cache).
func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const productsSQL = `
		SELECT id, name, description, category, price, stock, units_sold, images, created_at, updated_at
		FROM products
		ORDER BY created_at, id`

	rows, err := r.DB.QueryContext(ctxTimeout, productsSQL)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	index := make(map[string]int)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.Price,
			&p.Stock,
			&p.UnitsSold,
			pq.Array(&p.Images),
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, errors.NewDBError("Falha ao ler linha de produto", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}

	// Vendas de todos os produtos em uma única passada, preservando a
	// ordem de inserção (seq) dentro de cada produto.
	const salesSQL = `
		SELECT id, product_id, date, quantity, price_at_sale
		FROM sales
		ORDER BY seq`

	saleRows, err := r.DB.QueryContext(ctxTimeout, salesSQL)
	if err != nil {
		return nil, errors.NewDBError("Falha ao listar vendas", err)
	}
	defer saleRows.Close()

	for saleRows.Next() {
		var s domain.Sale
		if err := saleRows.Scan(&s.ID, &s.ProductID, &s.Date, &s.Quantity, &s.PriceAtSale); err != nil {
			return nil, errors.NewDBError("Falha ao ler linha de venda", err)
		}
		if i, ok := index[s.ProductID]; ok {
			products[i].Sales = append(products[i].Sales, s)
		}
	}
	if err := saleRows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar vendas", err)
	}

	return products, nil
}

// Update aplica uma atualização parcial a um produto existente.
// units_sold e o histórico de vendas nunca são tocados por aqui.
func (r *ProductRepository) Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	setClauses := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Name != nil {
		setClauses = append(setClauses, "name = "+arg(*update.Name))
	}
	if update.Description != nil {
		setClauses = append(setClauses, "description = "+arg(*update.Description))
	}
	if update.Category != nil {
		setClauses = append(setClauses, "category = "+arg(*update.Category))
	}
	if update.Price != nil {
		setClauses = append(setClauses, "price = "+arg(*update.Price))
	}
	if update.Stock != nil {
		setClauses = append(setClauses, "stock = "+arg(*update.Stock))
	}
	if update.Images != nil {
		setClauses = append(setClauses, "images = "+arg(pq.Array(*update.Images)))
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = "+arg(time.Now().UTC()))

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = %s",
		strings.Join(setClauses, ", "), arg(id))

	result, err := r.DB.ExecContext(ctxTimeout, query, args...)
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao atualizar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}

	r.invalidate(ctxTimeout, id)

	return r.FindByID(ctx, id)
}

// Delete remove um produto. As vendas embutidas caem junto (ON DELETE CASCADE).
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao remover produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}

	r.invalidate(ctxTimeout, id)
	return nil
}

// RecordSale executa a operação do Ledger: decrementa o estoque, incrementa
// units_sold e grava a venda, tudo em uma única transação. O SELECT ... FOR
// UPDATE serializa registros concorrentes contra o mesmo produto; vendas em
// produtos distintos não se bloqueiam entre si.
func (r *ProductRepository) RecordSale(ctx context.Context, productID string, quantity int) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	// 1. Ler preço e estoque atuais com lock de linha.
	var price float64
	var stock int
	const selectSQL = `SELECT price, stock FROM products WHERE id = $1 FOR UPDATE`

	err = tx.QueryRowContext(ctxTimeout, selectSQL, productID).Scan(&price, &stock)
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", productID))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto para venda", err)
	}

	// 2. Rejeitar (nunca truncar) vendas acima do estoque disponível.
	if quantity > stock {
		r.logger.Warn("Venda rejeitada por estoque insuficiente.", map[string]interface{}{
			"product_id": productID,
			"stock":      stock,
			"quantity":   quantity,
		})
		return domain.Product{}, errors.NewInsufficientStockError(
			fmt.Sprintf("Estoque atual (%d) não comporta a quantidade solicitada (%d).", stock, quantity))
	}

	now := time.Now().UTC()

	// 3. Aplicar a mutação do estoque e do contador acumulado.
	const updateSQL = `
		UPDATE products
		SET stock = stock - $1, units_sold = units_sold + $1, updated_at = $2
		WHERE id = $3`

	if _, err = tx.ExecContext(ctxTimeout, updateSQL, quantity, now, productID); err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao atualizar estoque na venda", err)
	}

	// 4. Gravar a venda com o preço congelado no momento da operação.
	const insertSQL = `
		INSERT INTO sales (id, product_id, date, quantity, price_at_sale)
		VALUES ($1, $2, $3, $4, $5)`

	saleID := uuid.New().String()
	if _, err = tx.ExecContext(ctxTimeout, insertSQL, saleID, productID, now, quantity, price); err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao gravar venda", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao commitar transação de venda", err)
	}

	r.invalidate(ctxTimeout, productID)

	r.logger.Info("Venda registrada.", map[string]interface{}{
		"product_id":    productID,
		"sale_id":       saleID,
		"quantity":      quantity,
		"price_at_sale": price,
	})

	// Releitura pós-mutação: devolve o produto já com a venda embutida.
	return r.FindByID(ctx, productID)
}

// DashboardStats calcula os contadores do painel em uma única query de
// agregação, espelhando a população completa sem materializá-la.
func (r *ProductRepository) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const statsSQL = `
		SELECT
			COUNT(*),
			COUNT(DISTINCT category),
			COUNT(*) FILTER (WHERE stock <= $1)
		FROM products`

	var stats domain.DashboardStats
	err := r.DB.QueryRowContext(ctxTimeout, statsSQL, domain.DashboardLowStockThreshold).Scan(
		&stats.TotalProducts,
		&stats.TotalCategories,
		&stats.LowStock,
	)
	if err != nil {
		return domain.DashboardStats{}, errors.NewDBError("Falha ao calcular estatísticas do painel", err)
	}

	return stats, nil
}

// findSalesByProduct carrega as vendas de um produto em ordem de inserção.
func (r *ProductRepository) findSalesByProduct(ctx context.Context, productID string) ([]domain.Sale, error) {
	const salesSQL = `
		SELECT id, product_id, date, quantity, price_at_sale
		FROM sales
		WHERE product_id = $1
		ORDER BY seq`

	rows, err := r.DB.QueryContext(ctx, salesSQL, productID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar vendas do produto", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Date, &s.Quantity, &s.PriceAtSale); err != nil {
			return nil, errors.NewDBError("Falha ao ler linha de venda", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar vendas", err)
	}

	return sales, nil
}

// invalidate remove a entrada de cache do produto após uma escrita.
func (r *ProductRepository) invalidate(ctx context.Context, id string) {
	key := fmt.Sprintf(productCacheKey, id)
	if err := r.Cache.Delete(ctx, key); err != nil {
		r.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
