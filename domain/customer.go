package domain

import "fmt"

// Address is an immutable postal address value object.
type Address struct {
	Street string `json:"street"`
	Number int    `json:"number"`
	Zip    string `json:"zip"`
	City   string `json:"city"`
}

// NewAddress validates and builds an address.
func NewAddress(street string, number int, zip, city string) (Address, error) {
	a := Address{Street: street, Number: number, Zip: zip, City: city}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (a Address) Validate() error {
	if a.Street == "" || a.Zip == "" || a.City == "" || a.Number <= 0 {
		return ErrInvalidAddress
	}
	return nil
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %d, %s, %s", a.Street, a.Number, a.Zip, a.City)
}

// Customer is referenced by orders through its id only.
type Customer struct {
	id           string
	name         string
	address      Address
	active       bool
	rewardPoints int
}

func NewCustomer(id, name string) (*Customer, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Customer{id: id, name: name}, nil
}

// RestoreCustomer rebuilds a customer from persisted state.
func RestoreCustomer(id, name string, address Address, active bool, rewardPoints int) (*Customer, error) {
	c, err := NewCustomer(id, name)
	if err != nil {
		return nil, err
	}
	if !address.IsZero() {
		if err := address.Validate(); err != nil {
			return nil, err
		}
	}
	if active && address.IsZero() {
		return nil, ErrAddressRequired
	}
	if rewardPoints < 0 {
		return nil, ErrInvalidPoints
	}
	c.address = address
	c.active = active
	c.rewardPoints = rewardPoints
	return c, nil
}

func (c *Customer) ID() string        { return c.id }
func (c *Customer) Name() string      { return c.name }
func (c *Customer) Address() Address  { return c.address }
func (c *Customer) IsActive() bool    { return c.active }
func (c *Customer) RewardPoints() int { return c.rewardPoints }

func (c *Customer) ChangeName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	c.name = name
	return nil
}

func (c *Customer) ChangeAddress(address Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.address = address
	return nil
}

// Activate requires an address to be set first.
func (c *Customer) Activate() error {
	if c.address.IsZero() {
		return ErrAddressRequired
	}
	c.active = true
	return nil
}

func (c *Customer) Deactivate() {
	c.active = false
}

func (c *Customer) AddRewardPoints(points int) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	c.rewardPoints += points
	return nil
}
