package shopify

// ProductsPageQuery pages through the full catalog for the bulk importer.
const ProductsPageQuery = `
query getProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        title
        handle
        description
        status
      }
    }
  }
}
`

// ProductVariantsQuery refreshes variant data for one product before
// reconciliation (up to 100 variants).
const ProductVariantsQuery = `
query getProduct($id: ID!) {
  product(id: $id) {
    id
    title
    variants(first: 100) {
      edges {
        node {
          id
          title
          availableForSale
          inventoryQuantity
          inventoryPolicy
          sku
          price
          compareAtPrice
          selectedOptions {
            name
            value
          }
          image {
            src
          }
        }
      }
    }
  }
}
`

// ProductMetafieldsQuery fetches the fixed set of descriptive metafields.
const ProductMetafieldsQuery = `
query getProductMetafields($id: ID!) {
  product(id: $id) {
    metafields(keys: ["data.details_column_01", "data.details_column_02"], first: 10) {
      edges {
        node {
          key
          value
        }
      }
    }
  }
}
`

// StorefrontAvailabilityQuery fetches availableForSale per variant by product
// handle, used when the Admin API refresh fails.
const StorefrontAvailabilityQuery = `
query getProduct($handle: String!) {
  product(handle: $handle) {
    id
    variants(first: 100) {
      edges {
        node {
          id
          availableForSale
        }
      }
    }
  }
}
`
