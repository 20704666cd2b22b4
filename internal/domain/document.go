package domain

import "strings"

// Document is the single persisted aggregate: every bucket ever fetched plus
// the day it was last written.
type Document struct {
	Catalog     *Catalog `json:"businesses"`
	DateUpdated Date     `json:"dateUpdated"`
}

// NewDocument returns the document used when nothing has been stored yet.
func NewDocument() Document {
	return Document{Catalog: NewCatalog()}
}

// MarkVisited increments the visit count of the first record named name in
// the bucket for term. It reports whether a record was found.
func (d *Document) MarkVisited(term, name string) bool {
	records, ok := d.Catalog.Bucket(term)
	if !ok {
		return false
	}
	for i := range records {
		if records[i].Name == name {
			records[i].NumVisited++
			return true
		}
	}
	return false
}

// Request is a normalized inbound search.
type Request struct {
	SearchTerm string
	Location   string
}

// City returns the first word of the location, which is where the sender's
// city starts.
func (r Request) City() string {
	fields := strings.Fields(r.Location)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
