package models

// All returns every model registered for GORM auto-migration, ordered so
// referenced tables are created before their dependents.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&CartRecord{},
		&CartItem{},
		&WishlistItem{},
		&Order{},
		&OrderItem{},
		&SupportMessage{},
	}
}
