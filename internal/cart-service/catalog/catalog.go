// Package catalog provides the read-only offer lookup the cart command
// handlers resolve names and prices through. It is injected so the static
// table can later be swapped for a real product source.
package catalog

import (
	"errors"

	"github.com/dadopl/poc-nocart/internal/pkg/money"
)

var ErrOfferNotFound = errors.New("offer not found in catalog")

type Product struct {
	Name     string
	Price    money.Money
	Weight   float64
	Category string
}

type Service struct {
	Name  string
	Price money.Money
}

type Catalog interface {
	Product(offerID int64) (Product, error)
	Service(serviceID string) (Service, error)
}

type StaticCatalog struct {
	products map[int64]Product
	services map[string]Service
}

// NewStaticCatalog seeds the fixture offers used across environments.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{
		products: map[int64]Product{
			123: {Name: "Laptop Dell XPS 15", Price: money.FromFloat(5999.00, money.DefaultCurrency), Weight: 2.0, Category: "electronics"},
			456: {Name: "Gwarancja 36 miesięcy", Price: money.FromFloat(299.00, money.DefaultCurrency), Weight: 0.0, Category: "warranty"},
			789: {Name: "Torba na laptop", Price: money.FromFloat(149.00, money.DefaultCurrency), Weight: 0.5, Category: "accessory"},
			999: {Name: "Lodówka Samsung", Price: money.FromFloat(3999.00, money.DefaultCurrency), Weight: 80.0, Category: "agd"},
		},
		services: map[string]Service{
			"sms-notif": {Name: "Powiadomienie SMS", Price: money.FromFloat(2.00, money.DefaultCurrency)},
			"carrying":  {Name: "Wniesienie i rozpakowanie", Price: money.FromFloat(99.00, money.DefaultCurrency)},
			"express":   {Name: "Dostawa express", Price: money.FromFloat(29.99, money.DefaultCurrency)},
		},
	}
}

func (c *StaticCatalog) Product(offerID int64) (Product, error) {
	p, ok := c.products[offerID]
	if !ok {
		return Product{}, ErrOfferNotFound
	}
	return p, nil
}

func (c *StaticCatalog) Service(serviceID string) (Service, error) {
	s, ok := c.services[serviceID]
	if !ok {
		return Service{}, ErrOfferNotFound
	}
	return s, nil
}
