package index

// PostingList is the ascending, duplicate-free set of document identifiers
// containing a term.
type PostingList []string

// Contains reports whether docID is in the list.
func (p PostingList) Contains(docID string) bool {
	_, found := p.search(docID)
	return found
}

// search returns the insertion position of docID and whether it is
// already present.
func (p PostingList) search(docID string) (int, bool) {
	for i, id := range p {
		switch {
		case id == docID:
			return i, true
		case id > docID:
			return i, false
		}
	}
	return len(p), false
}

// insert adds docID at its sorted position. Duplicates are skipped.
func (p PostingList) insert(docID string) (PostingList, bool) {
	pos, found := p.search(docID)
	if found {
		return p, false
	}
	p = append(p, "")
	copy(p[pos+1:], p[pos:])
	p[pos] = docID
	return p, true
}

// TermEntry pairs a term with its postings.
type TermEntry struct {
	Term     string
	Postings PostingList
}
