package domain

// Product is the single catalog entity. Image holds the stored filename; an
// inbound insert carries a "<prefix>,<base64>" payload there instead, which is
// replaced before the record reaches the store.
type Product struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"size:120" json:"name"`
	Category    Category `gorm:"size:20;index" json:"category"`
	Image       string   `gorm:"size:255" json:"image"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Description string   `gorm:"size:500" json:"description"`
	InputDate   Date     `gorm:"column:inputdate;type:date" json:"inputdate"`
}

func (Product) TableName() string { return "products" }
