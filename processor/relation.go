package processor

// processRelation coordinates a single page of a multi-page relation
// traversal: it links the page back to its origin resource,
// marks the page as belonging to the relation's all-time siblings set and
// to this particular guid-branded snapshot, and records every element on
// the page as a resource link so consumers can reconstruct membership by
// unioning snapshots that share a guid.
func (p *Processor) processRelation(req *Request, rel *RelationDescriptor) error {
	qualifier := req.Qualifier()

	req.LinkResource("origin", qualifier)
	req.LinkResource(string(rel.Origin), qualifier)
	req.LinkSiblings(qualifier.Extend(rel.Name, "pages"))
	req.LinkCollection("unique", qualifier.Extend(rel.Name, "pages", rel.GUID))

	if req.Document == nil || req.Document.Array == nil {
		req.LinkResource("resources")
		return nil
	}

	hrefs := make([]URN, 0, len(req.Document.Array))
	for _, raw := range req.Document.Array {
		elem, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, ok := idOf(elem["id"])
		if !ok {
			continue
		}
		hrefs = append(hrefs, RootURN(rel.Type, id))
	}
	req.LinkResource("resources", hrefs...)
	return nil
}
