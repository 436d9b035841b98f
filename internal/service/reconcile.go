package service

import (
	"strconv"
	"strings"

	"github.com/apnchris/semaine/internal/domain"
	"github.com/apnchris/semaine/internal/sanity"
	"github.com/apnchris/semaine/internal/shopify"
)

// Metafield keys mirrored onto the product document. The Admin API returns
// them with the "data." namespace, which is stripped before storage.
const (
	metafieldNamespace     = "data."
	metafieldDetailsCol1   = "details_column_01"
	metafieldDetailsCol2   = "details_column_02"
	inventoryManagementRef = "SHOPIFY"
)

// reconcileProduct merges one product payload into the content store's
// document model and returns the mutations to apply. It performs no I/O.
//
// Variant documents are replaced wholesale (variants carry no editorial
// state). The product's store.* subtree is likewise replaced, but the
// editorial fields of the existing document (body, thumbSize, seo) are
// re-attached to the outgoing patch so the overwrite does not erase them.
// A nil overlay means first-time creation, not an error.
func reconcileProduct(p domain.Product, overlay *sanity.ProductOverlay, metafields map[string]string) []sanity.Mutation {
	productID := shopify.NumericID(p.ID)
	productDocID := sanity.ProductDocID(productID)

	mutations := make([]sanity.Mutation, 0, len(p.Variants)+2)

	variantRefs := make([]sanity.Reference, 0, len(p.Variants))
	for _, v := range p.Variants {
		variantID := shopify.NumericID(v.ID)
		variantDocID := sanity.VariantDocID(variantID)
		mutations = append(mutations, sanity.Mutation{
			CreateOrReplace: buildVariantDocument(p, v, productID, variantID, variantDocID),
		})
		variantRefs = append(variantRefs, sanity.WeakReference(variantID, variantDocID))
	}

	set := map[string]interface{}{
		"store": buildProductStore(p, productID, variantRefs, metafields),
	}
	overlay.Apply(set)

	mutations = append(mutations,
		sanity.Mutation{
			CreateIfNotExists: map[string]interface{}{
				"_type": "product",
				"_id":   productDocID,
			},
		},
		sanity.Mutation{
			Patch: &sanity.Patch{ID: productDocID, Set: set},
		},
	)

	return mutations
}

func buildVariantDocument(p domain.Product, v domain.Variant, productID, variantID, variantDocID string) map[string]interface{} {
	available := resolveAvailability(v)

	policy := v.InventoryPolicy
	if policy == "" {
		policy = domain.InventoryPolicyDeny
	}

	previewImageURL := ""
	if v.Image != nil {
		previewImageURL = v.Image.SourceURL()
	}
	if previewImageURL == "" {
		previewImageURL = p.PreviewImageURL()
	}

	store := map[string]interface{}{
		"_type":           "shopifyProductVariant",
		"id":              parseNumeric(variantID),
		"gid":             v.ID,
		"productId":       parseNumeric(productID),
		"productGid":      p.ID,
		"title":           v.Title,
		"sku":             v.SKU,
		"price":           v.PriceValue(),
		"previewImageUrl": previewImageURL,
		"inventory": map[string]interface{}{
			"_type":       "inventory",
			"isAvailable": available,
			"management":  inventoryManagementRef,
			"policy":      policy,
		},
		"status":    p.Status,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
		"isDeleted": false,
	}
	if cmp := v.CompareAtPriceValue(); cmp != nil {
		store["compareAtPrice"] = *cmp
	}
	for i, key := range []string{"option1", "option2", "option3"} {
		if i < len(v.SelectedOptions) {
			store[key] = v.SelectedOptions[i].Value
		}
	}

	return map[string]interface{}{
		"_type":            "productVariant",
		"_id":              variantDocID,
		"availableForSale": available,
		"store":            store,
	}
}

func buildProductStore(p domain.Product, productID string, variantRefs []sanity.Reference, metafields map[string]string) map[string]interface{} {
	images := make([]map[string]interface{}, 0, len(p.Images))
	for _, img := range p.Images {
		src := img.SourceURL()
		images = append(images, map[string]interface{}{
			"_type":       "object",
			"_key":        shopify.NumericID(img.ID),
			"id":          img.ID,
			"altText":     img.AltText,
			"height":      img.Height,
			"width":       img.Width,
			"url":         src,
			"src":         src,
			"originalSrc": src,
		})
	}

	options := make([]map[string]interface{}, 0, len(p.Options))
	for _, opt := range p.Options {
		options = append(options, map[string]interface{}{
			"_type":  "option",
			"_key":   opt.Name,
			"name":   opt.Name,
			"values": opt.Values,
		})
	}

	return map[string]interface{}{
		"_type": "shopifyProduct",
		"id":    parseNumeric(productID),
		"gid":   p.ID,
		"title": p.Title,
		"slug": map[string]interface{}{
			"_type":   "slug",
			"current": p.Handle,
		},
		"descriptionHtml": p.DescriptionHTML,
		"status":          p.Status,
		"productType":     p.ProductType,
		"vendor":          p.Vendor,
		"tags":            strings.Join(p.Tags, ", "),
		"previewImageUrl": p.PreviewImageURL(),
		"images":          images,
		"metafields": map[string]interface{}{
			metafieldDetailsCol1: metafields[metafieldDetailsCol1],
			metafieldDetailsCol2: metafields[metafieldDetailsCol2],
		},
		"priceRange": map[string]interface{}{
			"minVariantPrice": p.PriceRange.MinVariantPrice,
			"maxVariantPrice": p.PriceRange.MaxVariantPrice,
		},
		"options":   options,
		"variants":  variantRefs,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
		"isDeleted": false,
	}
}

// softDeleteMutations builds the deletion-path patches: set the soft-delete
// flag on each product document, touching nothing else.
func softDeleteMutations(productIDs []int64) []sanity.Mutation {
	mutations := make([]sanity.Mutation, 0, len(productIDs))
	for _, id := range productIDs {
		mutations = append(mutations, sanity.Mutation{
			Patch: &sanity.Patch{
				ID:  sanity.ProductDocID(strconv.FormatInt(id, 10)),
				Set: map[string]interface{}{"store.isDeleted": true},
			},
		})
	}
	return mutations
}

func parseNumeric(id string) int64 {
	n, err := shopify.NumericIDInt64(id)
	if err != nil {
		return 0
	}
	return n
}
