package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Product statuses as mirrored from Shopify
const (
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
	ProductStatusDraft    = "draft"
	ProductStatusUnknown  = "unknown"
)

// Inventory policies as reported by Shopify
const (
	InventoryPolicyContinue = "CONTINUE"
	InventoryPolicyDeny     = "DENY"
)

// Image is a product or variant image from a webhook payload or the Admin API.
type Image struct {
	ID      string `json:"id"`
	AltText string `json:"altText"`
	Height  int    `json:"height"`
	Width   int    `json:"width"`
	Src     string `json:"src"`
	URL     string `json:"url"`
}

// SourceURL returns whichever of src/url the sender populated.
func (i Image) SourceURL() string {
	if i.Src != "" {
		return i.Src
	}
	return i.URL
}

// Option is a product option definition (e.g. Size, Color).
type Option struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// SelectedOption is a single name/value pair on a variant.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PriceRange carries min/max variant prices from the payload.
type PriceRange struct {
	MinVariantPrice float64 `json:"minVariantPrice"`
	MaxVariantPrice float64 `json:"maxVariantPrice"`
}

// Quantity is an inventory quantity that senders deliver inconsistently:
// a JSON number, a numeric string, or absent entirely. Value reports the
// parsed quantity and whether one was present and parseable.
type Quantity struct {
	raw string
	set bool
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	q.raw = strings.TrimSpace(s)
	q.set = true
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.set {
		return []byte("null"), nil
	}
	if v, ok := q.Value(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(q.raw)
}

// Value returns the quantity as a number. ok is false when the quantity was
// absent or not parseable, which callers treat as inventory tracking disabled.
func (q Quantity) Value() (float64, bool) {
	if !q.set {
		return 0, false
	}
	v, err := strconv.ParseFloat(q.raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NewQuantity builds a defined quantity, used by tests and the Admin API mapper.
func NewQuantity(raw string) Quantity {
	return Quantity{raw: raw, set: true}
}

// Variant is a purchasable SKU-level child of a product. Optional fields are
// pointers (or Quantity) so the explicit-vs-absent distinction survives decoding.
type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku"`
	Price             string           `json:"price"`
	CompareAtPrice    string           `json:"compareAtPrice"`
	AvailableForSale  *bool            `json:"availableForSale"`
	InventoryQuantity Quantity         `json:"inventoryQuantity"`
	InventoryPolicy   string           `json:"inventoryPolicy"`
	SelectedOptions   []SelectedOption `json:"selectedOptions"`
	Image             *Image           `json:"image"`
}

// PriceValue parses the variant price, defaulting to 0 on bad input.
func (v Variant) PriceValue() float64 {
	p, err := strconv.ParseFloat(strings.TrimSpace(v.Price), 64)
	if err != nil {
		return 0
	}
	return p
}

// CompareAtPriceValue parses compareAtPrice; nil when absent or unparseable.
func (v Variant) CompareAtPriceValue() *float64 {
	s := strings.TrimSpace(v.CompareAtPrice)
	if s == "" {
		return nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &p
}

// Product is a full product payload from a webhook delivery or the Admin API.
type Product struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DescriptionHTML string            `json:"descriptionHtml"`
	Handle          string            `json:"handle"`
	FeaturedImage   *Image            `json:"featuredImage"`
	Images          []Image           `json:"images"`
	Options         []Option          `json:"options"`
	PriceRange      PriceRange        `json:"priceRange"`
	ProductType     string            `json:"productType"`
	Tags            []string          `json:"tags"`
	Variants        []Variant         `json:"variants"`
	Vendor          string            `json:"vendor"`
	Status          string            `json:"status"`
	PublishedAt     string            `json:"publishedAt"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
	Metafields      map[string]string `json:"metafields"`
}

// PreviewImageURL picks the product-level preview image: featured image first,
// then the first image in the list.
func (p Product) PreviewImageURL() string {
	if p.FeaturedImage != nil && p.FeaturedImage.SourceURL() != "" {
		return p.FeaturedImage.SourceURL()
	}
	if len(p.Images) > 0 {
		return p.Images[0].SourceURL()
	}
	return ""
}
