package domain

// StockMovement is an immutable ledger fact. Corrections are made by
// inserting a compensating movement, never by updating an existing row.
type StockMovement struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Change    int64  `db:"change" json:"change"`
	Reason    string `db:"reason" json:"reason"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
