// Package storefront serves the mock Purrfect Ventures catalog and writes
// product copy with the model.
package storefront

import (
	"strings"

	"github.com/diogo/purrfect/internal/models"
)

var products = []models.Product{
	{ID: "1", Name: "The Zenith Cat Castle", Price: 299.99, Category: models.CategoryFurniture, Image: "https://picsum.photos/400/400?random=1", Description: "A towering fortress for your feline overlord."},
	{ID: "2", Name: "Organic Salmon Snaps", Price: 12.99, Category: models.CategoryFood, Image: "https://picsum.photos/400/400?random=2", Description: "Freeze-dried perfection for picky eaters."},
	{ID: "3", Name: "Turbo-Chaser Laser Bot", Price: 45.00, Category: models.CategoryToy, Image: "https://picsum.photos/400/400?random=3", Description: "Automated laser engagement system."},
	{ID: "4", Name: "Velvet Lounge Bed", Price: 85.50, Category: models.CategoryFurniture, Image: "https://picsum.photos/400/400?random=4", Description: "Orthopedic memory foam luxury."},
	{ID: "5", Name: "Crystal Water Fountain", Price: 55.00, Category: models.CategoryAccessory, Image: "https://picsum.photos/400/400?random=5", Description: "Filtered hydration with zen aesthetics."},
	{ID: "6", Name: "Feather Wand Pro", Price: 15.99, Category: models.CategoryToy, Image: "https://picsum.photos/400/400?random=6", Description: "Aerodynamic feathers mimicking real prey."},
}

var services = []models.Service{
	{ID: "s1", Name: "Virtual Vet Consult", Price: "$40/session", Icon: "🩺", Description: "24/7 access to licensed veterinarians via video chat."},
	{ID: "s2", Name: "Purr-sonal Styling", Price: "$25/month", Icon: "🎀", Description: "Monthly curated box of accessories tailored to your cat."},
	{ID: "s3", Name: "Cat Sitting Match", Price: "Varies", Icon: "🏡", Description: "Connect with verified, cat-obsessed sitters in your area."},
}

// Products returns a copy of the product catalog
func Products() []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}

// Services returns a copy of the service offerings
func Services() []models.Service {
	out := make([]models.Service, len(services))
	copy(out, services)
	return out
}

// ByCategory returns the products in category
func ByCategory(category models.Category) []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// FindProduct looks a product up by id or case-insensitive name
func FindProduct(ref string) (models.Product, bool) {
	ref = strings.TrimSpace(ref)
	for _, p := range products {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return models.Product{}, false
}
