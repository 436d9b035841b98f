package sanity

// Document id conventions: product and variant documents get deterministic
// ids derived from the Shopify numeric id, so re-syncs always hit the same
// documents and replays are idempotent.
const (
	ProductIDPrefix = "shopifyProduct-"
	VariantIDPrefix = "shopifyProductVariant-"
	DraftsPrefix    = "drafts."
)

// ProductDocID returns the document id for a numeric product id string.
func ProductDocID(numericID string) string {
	return ProductIDPrefix + numericID
}

// VariantDocID returns the document id for a numeric variant id string.
func VariantDocID(numericID string) string {
	return VariantIDPrefix + numericID
}

// DraftID returns the draft-prefixed counterpart of a document id.
func DraftID(docID string) string {
	return DraftsPrefix + docID
}
