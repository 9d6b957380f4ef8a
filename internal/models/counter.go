package models

// Counter domain names.
const (
	CounterProducts = "products"
	CounterSales    = "vendas"
)

// Counter is a singleton row per logical sequence holding the last
// allocated seq value. It is read and incremented only inside the same
// transaction that consumes the next value, and never decremented.
type Counter struct {
	Name    string `gorm:"primaryKey" json:"name"`
	LastSeq int64  `gorm:"not null;default:0" json:"last_seq"`
}

// TableName keeps the collection name used by the original store layout.
func (Counter) TableName() string { return "counters" }
