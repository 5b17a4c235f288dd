package processor

// linkOpts carries the optional overrides accepted by AddRoot/AddResource/
// AddCollection/AddRelation.
type linkOpts struct {
	url       *string
	urn       *URN
	qualifier *URN
}

// LinkOption overrides a default derived by one of the Add* helpers.
type LinkOption func(*linkOpts)

// WithURL supplies an explicit URL instead of the document-derived default.
func WithURL(u string) LinkOption { return func(o *linkOpts) { o.url = &u } }

// WithURN supplies an explicit URN instead of the document-derived default.
func WithURN(u URN) LinkOption { return func(o *linkOpts) { o.urn = &u } }

// WithQualifier overrides the qualifier AddResource derives its URN and
// child fetch from (defaults to the request's current qualifier).
func WithQualifier(q URN) LinkOption { return func(o *linkOpts) { o.qualifier = &q } }

func resolveOpts(opts []LinkOption) linkOpts {
	var o linkOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// baseQualifier is the URN that this request's own owned collections,
// resources, and relations are scoped under. A root-type document (org,
// user, repo, team) scopes its children under its own self URN, ignoring
// any inherited traversal qualifier; a child-type document scopes them
// under the qualifier its parent handed down.
func (r *Request) baseQualifier() URN {
	if isRootType(r.Type) {
		if id, ok := r.idField("id"); ok {
			return RootURN(r.Type, id)
		}
	}
	return r.Qualifier()
}

// idField reads and normalizes an id-shaped field off the request's
// document object.
func (r *Request) idField(key string) (any, bool) {
	if r.Document == nil || r.Document.Object == nil {
		return nil, false
	}
	v, ok := r.Document.Object[key]
	if !ok {
		return nil, false
	}
	return idOf(v)
}

// nestedObject returns the JSON object nested under key on the request's
// document, if present.
func (r *Request) nestedObject(key string) (map[string]any, bool) {
	if r.Document == nil || r.Document.Object == nil {
		return nil, false
	}
	v, ok := r.Document.Object[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// stringField reads a string field off the request's document object.
func (r *Request) stringField(key string) (string, bool) {
	if r.Document == nil || r.Document.Object == nil {
		return "", false
	}
	v, ok := r.Document.Object[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// linkSelf records the document's canonical self link.
func (r *Request) linkSelf(href URN) {
	r.Document.ensureLinks()
	r.Document.Metadata.Links["self"] = Link{Kind: LinkSelf, Href: href}
}

// AddSelfLink records self = <qualifier>:<type>:<id>, reading the id from
// the given document field (default "id").
func (r *Request) AddSelfLink(key string) error {
	if key == "" {
		key = "id"
	}
	id, ok := r.idField(key)
	if !ok {
		return NewFieldError(key, r.Type)
	}
	r.linkSelf(r.Qualifier().Extend(string(r.Type), id))
	return nil
}

// AddRootSelfLink records self = urn:<type>:<id> for a root-type resource,
// ignoring any inherited qualifier.
func (r *Request) AddRootSelfLink() error {
	id, ok := r.idField("id")
	if !ok {
		return NewFieldError("id", r.Type)
	}
	r.linkSelf(RootURN(r.Type, id))
	return nil
}

// LinkSiblings records the collection URN this document belongs to.
func (r *Request) LinkSiblings(urn URN) {
	r.Document.ensureLinks()
	r.Document.Metadata.Links["siblings"] = Link{Kind: LinkSiblings, Href: urn}
}

// LinkResource records a singular or array-valued resource link.
func (r *Request) LinkResource(name string, hrefs ...URN) {
	r.Document.ensureLinks()
	if len(hrefs) == 1 {
		r.Document.Metadata.Links[name] = Link{Kind: LinkResource, Href: hrefs[0]}
		return
	}
	r.Document.Metadata.Links[name] = Link{Kind: LinkResource, Hrefs: hrefs}
}

// LinkCollection records an owned multi-document set link.
func (r *Request) LinkCollection(name string, urn URN) {
	r.Document.ensureLinks()
	r.Document.Metadata.Links[name] = Link{Kind: LinkCollection, Href: urn}
}

// LinkRelation records a non-owned association link.
func (r *Request) LinkRelation(name string, urn URN) {
	r.Document.ensureLinks()
	r.Document.Metadata.Links[name] = Link{Kind: LinkRelation, Href: urn}
}

// IsRootType reports whether typ is a root type (user/org/repo/team).
func (r *Request) IsRootType(typ ElementType) bool { return isRootType(typ) }

// IsCollectionType reports whether this request's declared type routes
// through the pagination engine's collection processor.
func (r *Request) IsCollectionType() bool { return collectionTypeNames[r.Type] }

// AddRoot records a singular reference to a root resource and enqueues its
// fetch. A no-op when the document has no nested object under name and
// neither WithURL nor WithURN was supplied.
func (r *Request) AddRoot(name string, typ ElementType, opts ...LinkOption) error {
	o := resolveOpts(opts)
	nested, hasNested := r.nestedObject(name)
	if !hasNested && o.urn == nil && o.url == nil {
		return nil
	}

	var urn URN
	if o.urn != nil {
		urn = *o.urn
	} else {
		if !hasNested {
			return NewFieldError(name, r.Type)
		}
		id, ok := idOf(nested["id"])
		if !ok {
			return NewFieldError(name+".id", r.Type)
		}
		urn = RootURN(typ, id)
	}

	var url string
	if o.url != nil {
		url = *o.url
	} else {
		if !hasNested {
			return NewFieldError(name+".url", r.Type)
		}
		u, ok := nested["url"].(string)
		if !ok {
			return NewFieldError(name+".url", r.Type)
		}
		url = u
	}

	r.LinkResource(name, urn)
	return r.QueueRoot(typ, url)
}

// AddResource records a singular reference to a child resource and
// enqueues its fetch under the current (or overridden) qualifier.
func (r *Request) AddResource(name string, typ ElementType, id any, opts ...LinkOption) error {
	o := resolveOpts(opts)
	qualifier := r.baseQualifier()
	if o.qualifier != nil {
		qualifier = *o.qualifier
	}

	urn := qualifier.Extend(name, id)
	if o.urn != nil {
		urn = *o.urn
	}

	var url string
	if o.url != nil {
		url = *o.url
	} else {
		u, ok := r.stringField(name + "_url")
		if !ok {
			return NewFieldError(name+"_url", r.Type)
		}
		url = u
	}

	r.LinkResource(name, urn)
	return r.QueueChild(typ, url, qualifier)
}

// AddCollection records an owned multi-document set link and enqueues the
// collection's first fetch. Root-element collections enqueue as
// root-producing; everything else carries the qualifier down.
func (r *Request) AddCollection(name string, typ ElementType, opts ...LinkOption) error {
	o := resolveOpts(opts)
	qualifier := r.baseQualifier()

	urn := qualifier.Extend(name)
	if o.urn != nil {
		urn = *o.urn
	}

	var url string
	if o.url != nil {
		url = *o.url
	} else {
		u, ok := r.stringField(name + "_url")
		if !ok {
			return NewFieldError(name+"_url", r.Type)
		}
		url = u
	}

	r.LinkCollection(name, urn)
	ctx := Context{Qualifier: qualifier, ElementType: typ}
	if isRootType(typ) {
		return r.QueueRoots(name, url, ctx)
	}
	return r.QueueChildren(name, url, ctx)
}

// AddEmptyCollection records a collection link with no backing fetch, used
// when a resource owns a named collection that has no directly fetchable
// list endpoint (a repo's pull_requests).
func (r *Request) AddEmptyCollection(name string, opts ...LinkOption) {
	o := resolveOpts(opts)
	qualifier := r.baseQualifier()
	urn := qualifier.Extend(name)
	if o.urn != nil {
		urn = *o.urn
	}
	r.LinkCollection(name, urn)
}

// AddRelation records a non-owned association link, brands it with a fresh
// guid, and enqueues the set as a relation traversal.
func (r *Request) AddRelation(name string, typ ElementType, opts ...LinkOption) error {
	o := resolveOpts(opts)
	qualifier := r.baseQualifier()

	urn := qualifier.Extend(name)
	if o.urn != nil {
		urn = *o.urn
	}

	var url string
	if o.url != nil {
		url = *o.url
	} else {
		u, ok := r.stringField(name + "_url")
		if !ok {
			return NewFieldError(name+"_url", r.Type)
		}
		url = u
	}

	guid := newGUID()
	target := urn.Extend("pages", guid)
	r.LinkRelation(name, target)

	ctx := Context{
		Qualifier:   qualifier,
		ElementType: typ,
		Relation:    &RelationDescriptor{Origin: r.Type, Name: name, Type: typ, GUID: guid},
	}
	return r.QueueRoots(name, url, ctx)
}
