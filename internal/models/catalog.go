package models

import "fmt"

// Category groups storefront products
type Category string

const (
	CategoryToy       Category = "toy"
	CategoryFurniture Category = "furniture"
	CategoryFood      Category = "food"
	CategoryAccessory Category = "accessory"
)

// Product is a mock storefront item
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
}

// PriceLabel formats the price as shown on the storefront
func (p Product) PriceLabel() string {
	return fmt.Sprintf("$%.2f", p.Price)
}

// Service is a mock storefront service offering
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}
