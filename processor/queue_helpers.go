package processor

// QueueRequests enqueues already-constructed requests on the default
// priority.
func (r *Request) QueueRequests(reqs ...*Request) error {
	return r.QueueRequestsOn(PriorityDefault, reqs...)
}

// QueueRequestsOn enqueues already-constructed requests on a specific
// priority lane.
func (r *Request) QueueRequestsOn(priority Priority, reqs ...*Request) error {
	if r.enqueue == nil || len(reqs) == 0 {
		return nil
	}
	return r.enqueue(priority, reqs...)
}

// QueueRoot enqueues a fetch of a root-type resource (user/org/repo/team),
// keyed by its own identity rather than the current qualifier.
func (r *Request) QueueRoot(typ ElementType, url string) error {
	return r.QueueRequests(NewRequest(typ, url, Context{}, r.Policy))
}

// QueueChild enqueues a fetch of a child-type resource scoped under the
// given qualifier.
func (r *Request) QueueChild(typ ElementType, url string, qualifier URN) error {
	return r.QueueRequests(NewRequest(typ, url, Context{Qualifier: qualifier}, r.Policy))
}

// QueueRoots enqueues the initial fetch of a collection/relation whose
// elements are root-type resources.
func (r *Request) QueueRoots(name string, url string, ctx Context) error {
	return r.QueueRequests(NewRequest(ElementType(name), url, ctx, r.Policy))
}

// QueueChildren enqueues the initial fetch of a collection whose elements
// are child-type resources scoped under ctx.Qualifier.
func (r *Request) QueueChildren(name string, url string, ctx Context) error {
	return r.QueueRequests(NewRequest(ElementType(name), url, ctx, r.Policy))
}

// QueueCollectionElement enqueues one element discovered while processing
// a collection/relation page, routing it to a root or child fetch based on
// whether typ is a root type.
func (r *Request) QueueCollectionElement(typ ElementType, url string, qualifier URN) error {
	if isRootType(typ) {
		return r.QueueRoot(typ, url)
	}
	return r.QueueChild(typ, url, qualifier)
}
