package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a value object representing a shipping or billing address
// It is immutable - all operations return new Address instances
type Address struct {
	name    string
	street  string
	city    string
	state   string
	zipCode string
	country string
	phone   string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithPhone sets the contact phone number for the address
func WithPhone(phone string) AddressOption {
	return func(a *Address) {
		a.phone = strings.TrimSpace(phone)
	}
}

// WithCountry sets the country for the address
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address with the required fields
// Name, street, city, state and zip code are required; country and phone are optional
func NewAddress(name, street, city, state, zipCode string, opts ...AddressOption) (Address, error) {
	name = strings.TrimSpace(name)
	street = strings.TrimSpace(street)
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	zipCode = strings.TrimSpace(zipCode)

	if name == "" {
		return Address{}, fmt.Errorf("recipient name cannot be empty")
	}
	if len(name) > 100 {
		return Address{}, fmt.Errorf("recipient name cannot exceed 100 characters")
	}
	if street == "" {
		return Address{}, fmt.Errorf("street cannot be empty")
	}
	if len(street) > 200 {
		return Address{}, fmt.Errorf("street cannot exceed 200 characters")
	}
	if city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if state == "" {
		return Address{}, fmt.Errorf("state cannot be empty")
	}
	if zipCode == "" {
		return Address{}, fmt.Errorf("zip code cannot be empty")
	}
	if len(zipCode) > 20 {
		return Address{}, fmt.Errorf("zip code cannot exceed 20 characters")
	}

	addr := Address{
		name:    name,
		street:  street,
		city:    city,
		state:   state,
		zipCode: zipCode,
		country: "USA",
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if len(addr.country) > 100 {
		return Address{}, fmt.Errorf("country cannot exceed 100 characters")
	}
	if len(addr.phone) > 30 {
		return Address{}, fmt.Errorf("phone cannot exceed 30 characters")
	}

	return addr, nil
}

// MustNewAddress creates a new Address, panics on error
func MustNewAddress(name, street, city, state, zipCode string, opts ...AddressOption) Address {
	addr, err := NewAddress(name, street, city, state, zipCode, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// Name returns the recipient name
func (a Address) Name() string {
	return a.name
}

// Street returns the street line
func (a Address) Street() string {
	return a.street
}

// City returns the city
func (a Address) City() string {
	return a.city
}

// State returns the state or province
func (a Address) State() string {
	return a.state
}

// ZipCode returns the postal code
func (a Address) ZipCode() string {
	return a.zipCode
}

// Country returns the country
func (a Address) Country() string {
	return a.country
}

// Phone returns the contact phone number
func (a Address) Phone() string {
	return a.phone
}

// IsEmpty returns true if the address is empty (all required fields are blank)
func (a Address) IsEmpty() bool {
	return a.name == "" && a.street == "" && a.city == "" && a.state == "" && a.zipCode == ""
}

// FullAddress returns the complete formatted address string
// Format: Name, Street, City, State ZipCode, Country
func (a Address) FullAddress() string {
	if a.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, 5)
	if a.name != "" {
		parts = append(parts, a.name)
	}
	if a.street != "" {
		parts = append(parts, a.street)
	}
	if a.city != "" {
		parts = append(parts, a.city)
	}
	region := strings.TrimSpace(a.state + " " + a.zipCode)
	if region != "" {
		parts = append(parts, region)
	}
	if a.country != "" {
		parts = append(parts, a.country)
	}
	return strings.Join(parts, ", ")
}

// String returns a string representation of the address
func (a Address) String() string {
	return a.FullAddress()
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a.name == other.name &&
		a.street == other.street &&
		a.city == other.city &&
		a.state == other.state &&
		a.zipCode == other.zipCode &&
		a.country == other.country &&
		a.phone == other.phone
}

// addressJSON is the serialized form of Address
type addressJSON struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Name:    a.name,
		Street:  a.street,
		City:    a.city,
		State:   a.state,
		ZipCode: a.zipCode,
		Country: a.country,
		Phone:   a.phone,
	})
}

// UnmarshalJSON implements json.Unmarshaler
// Fields are assigned directly without validation so that historical rows
// stored before a validation rule tightened still load
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.name = v.Name
	a.street = v.Street
	a.city = v.City
	a.state = v.State
	a.zipCode = v.ZipCode
	a.country = v.Country
	a.phone = v.Phone
	return nil
}

// Value implements driver.Valuer for database storage (JSON column)
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}

	return a.UnmarshalJSON(data)
}
