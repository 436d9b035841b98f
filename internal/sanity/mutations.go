package sanity

import "encoding/json"

// Mutation is one operation in a content-store transaction. Exactly one field
// is set per mutation.
type Mutation struct {
	CreateIfNotExists map[string]interface{} `json:"createIfNotExists,omitempty"`
	CreateOrReplace   map[string]interface{} `json:"createOrReplace,omitempty"`
	Patch             *Patch                 `json:"patch,omitempty"`
}

// Patch sets fields on an existing document.
type Patch struct {
	ID  string                 `json:"id"`
	Set map[string]interface{} `json:"set,omitempty"`
}

// Reference is a document-to-document pointer. Weak references do not enforce
// referential integrity on deletion.
type Reference struct {
	Type string `json:"_type"`
	Key  string `json:"_key,omitempty"`
	Ref  string `json:"_ref"`
	Weak bool   `json:"_weak,omitempty"`
}

// WeakReference builds an ordered weak reference entry.
func WeakReference(key, ref string) Reference {
	return Reference{Type: "reference", Key: key, Ref: ref, Weak: true}
}

// ProductOverlay is the editorial subtree of a product document. Fields are
// raw JSON so they round-trip untouched when re-attached to a patch.
type ProductOverlay struct {
	Body      json.RawMessage `json:"body,omitempty"`
	ThumbSize json.RawMessage `json:"thumbSize,omitempty"`
	SEO       json.RawMessage `json:"seo,omitempty"`
}

// Empty reports whether the overlay carries no editorial fields.
func (o *ProductOverlay) Empty() bool {
	return o == nil || (isAbsent(o.Body) && isAbsent(o.ThumbSize) && isAbsent(o.SEO))
}

// Apply copies the overlay's non-null editorial fields onto a patch set. Safe
// to call on a nil overlay (first-time creation).
func (o *ProductOverlay) Apply(set map[string]interface{}) {
	if o.Empty() {
		return
	}
	if !isAbsent(o.Body) {
		set["body"] = o.Body
	}
	if !isAbsent(o.ThumbSize) {
		set["thumbSize"] = o.ThumbSize
	}
	if !isAbsent(o.SEO) {
		set["seo"] = o.SEO
	}
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
