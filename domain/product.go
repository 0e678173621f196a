package domain

// Product is the catalog entry whose name and price are copied into order items.
type Product struct {
	id    string
	name  string
	price float64
}

func NewProduct(id, name string, price float64) (*Product, error) {
	switch {
	case id == "":
		return nil, ErrEmptyID
	case name == "":
		return nil, ErrEmptyName
	case price < 0:
		return nil, ErrInvalidPrice
	}
	return &Product{id: id, name: name, price: price}, nil
}

func (p *Product) ID() string     { return p.id }
func (p *Product) Name() string   { return p.name }
func (p *Product) Price() float64 { return p.price }

func (p *Product) ChangeName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	p.name = name
	return nil
}

func (p *Product) ChangePrice(price float64) error {
	if price < 0 {
		return ErrInvalidPrice
	}
	p.price = price
	return nil
}
