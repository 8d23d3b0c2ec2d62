// Package resources declares every resource served by the API: its schema
// and the records in other resources that reference it.
package resources

import (
	"sort"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/schema"
)

// Resource names. Each is also the collection name and the route segment.
const (
	State             = "state"
	City              = "city"
	Category          = "category"
	Product           = "product"
	Cart              = "cart"
	Banner            = "banner"
	Shipping          = "shipping"
	Order             = "order"
	Wallet            = "wallet"
	WalletTransaction = "walletTransaction"

	// Referenced but not served by this API.
	User    = "user"
	Country = "country"
)

// Dependent is one edge of the dependency graph: documents of Resource whose
// Field holds the id of the owning resource.
type Dependent struct {
	Resource string
	Field    string
}

// Descriptor is everything the generic pipeline needs about one resource.
type Descriptor struct {
	Name       string
	Schema     *schema.Schema
	Dependents []Dependent
}

// Registry is the immutable set of descriptors, built once at startup.
type Registry struct {
	byName map[string]*Descriptor
}

func NewRegistry(descs ...*Descriptor) *Registry {
	r := &Registry{byName: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		r.byName[d.Name] = d
	}
	return r
}

func (r *Registry) Get(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// MustGet panics on unknown names; use only with the constants above.
func (r *Registry) MustGet(name string) *Descriptor {
	d, ok := r.byName[name]
	if !ok {
		panic("unknown resource " + name)
	}
	return d
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DependentsOf returns the direct dependents of name, nil for leaves.
func (r *Registry) DependentsOf(name string) []Dependent {
	if d, ok := r.byName[name]; ok {
		return d.Dependents
	}
	return nil
}

// commonFields are stamped by the server on every resource.
var commonFields = []schema.Field{
	{Name: models.FieldIsActive, Kind: schema.KindBool},
	{Name: models.FieldIsDeleted, Kind: schema.KindBool},
	{Name: models.FieldAddedBy, Kind: schema.KindObjectID, Nullable: true},
	{Name: models.FieldUpdatedBy, Kind: schema.KindObjectID, Nullable: true},
	{Name: models.FieldCreatedAt, Kind: schema.KindDate, Nullable: true},
	{Name: models.FieldUpdatedAt, Kind: schema.KindDate, Nullable: true},
}

func withCommon(fields ...schema.Field) *schema.Schema {
	return schema.New(append(fields, commonFields...)...)
}

func str(name string) schema.Field {
	return schema.Field{Name: name, Kind: schema.KindString, Nullable: true}
}

func requiredStr(name string) schema.Field {
	return schema.Field{Name: name, Kind: schema.KindString, Required: true}
}

func ref(name, resource string) schema.Field {
	return schema.Field{Name: name, Kind: schema.KindObjectID, Nullable: true, Ref: resource}
}

// Default returns the catalogue served by the API.
func Default() *Registry {
	return NewRegistry(
		&Descriptor{
			Name: State,
			Schema: withCommon(
				requiredStr("stateName"),
				ref("countryId", Country),
			),
			Dependents: []Dependent{{City, "stateId"}, {Shipping, "stateId"}},
		},
		&Descriptor{
			Name: City,
			Schema: withCommon(
				requiredStr("cityName"),
				ref("stateId", State),
				str("pincode"),
			),
			Dependents: []Dependent{{Shipping, "cityId"}},
		},
		&Descriptor{
			Name: Category,
			Schema: withCommon(
				requiredStr("name"),
				str("description"),
				schema.Field{Name: "image", Kind: schema.KindString, Nullable: true, Rule: "url"},
				ref("parentCategoryId", Category),
			),
			Dependents: []Dependent{{Category, "parentCategoryId"}, {Product, "categoryId"}},
		},
		&Descriptor{
			Name: Product,
			Schema: withCommon(
				requiredStr("name"),
				str("description"),
				schema.Field{Name: "price", Kind: schema.KindNumber, Required: true, Rule: "min=0"},
				ref("categoryId", Category),
				schema.Field{Name: "images", Kind: schema.KindArray, Elem: schema.KindString},
				schema.Field{Name: "stock", Kind: schema.KindNumber, Rule: "min=0"},
				str("sku"),
			),
			Dependents: []Dependent{{Cart, "productId"}},
		},
		&Descriptor{
			Name: Cart,
			Schema: withCommon(
				ref("userId", User),
				schema.Field{Name: "productId", Kind: schema.KindObjectID, Required: true, Ref: Product},
				schema.Field{Name: "quantity", Kind: schema.KindNumber, Rule: "min=1"},
			),
		},
		&Descriptor{
			Name: Banner,
			Schema: withCommon(
				requiredStr("title"),
				str("imageUrl"),
				str("link"),
				str("position"),
				schema.Field{Name: "startDate", Kind: schema.KindDate, Nullable: true},
				schema.Field{Name: "endDate", Kind: schema.KindDate, Nullable: true},
			),
		},
		&Descriptor{
			Name: Shipping,
			Schema: withCommon(
				str("fullName"),
				requiredStr("addressLine1"),
				str("addressLine2"),
				ref("cityId", City),
				ref("stateId", State),
				str("pincode"),
				str("phone"),
				ref("userId", User),
			),
			Dependents: []Dependent{{Order, "shippingId"}},
		},
		&Descriptor{
			Name: Order,
			Schema: withCommon(
				requiredStr("orderNo"),
				ref("userId", User),
				schema.Field{Name: "items", Kind: schema.KindArray, Elem: schema.KindObject, Fields: []schema.Field{
					{Name: "productId", Kind: schema.KindObjectID, Required: true, Ref: Product},
					{Name: "quantity", Kind: schema.KindNumber, Rule: "min=1"},
					{Name: "price", Kind: schema.KindNumber, Rule: "min=0"},
				}},
				schema.Field{Name: "totalAmount", Kind: schema.KindNumber, Rule: "min=0"},
				ref("shippingId", Shipping),
				schema.Field{Name: "status", Kind: schema.KindString, Nullable: true, Rule: "oneof=placed confirmed shipped delivered cancelled"},
				str("paymentMethod"),
			),
			Dependents: []Dependent{{WalletTransaction, "orderId"}},
		},
		&Descriptor{
			Name: Wallet,
			Schema: withCommon(
				schema.Field{Name: "userId", Kind: schema.KindObjectID, Required: true, Ref: User},
				schema.Field{Name: "balance", Kind: schema.KindNumber},
				str("currency"),
			),
			Dependents: []Dependent{{WalletTransaction, "walletId"}},
		},
		&Descriptor{
			Name: WalletTransaction,
			Schema: withCommon(
				schema.Field{Name: "walletId", Kind: schema.KindObjectID, Required: true, Ref: Wallet},
				ref("orderId", Order),
				schema.Field{Name: "amount", Kind: schema.KindNumber, Required: true},
				schema.Field{Name: "type", Kind: schema.KindString, Required: true, Rule: "oneof=credit debit"},
				str("remarks"),
			),
		},
	)
}
