package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Catalog maps a search term to the businesses fetched for it. Terms keep the
// order in which they were first added, including across JSON round trips.
// The zero value is an empty catalog ready to use.
type Catalog struct {
	terms   []string
	buckets map[string][]BusinessRecord
}

func NewCatalog() *Catalog {
	return &Catalog{buckets: map[string][]BusinessRecord{}}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.terms)
}

// Terms returns the bucket terms in insertion order.
func (c *Catalog) Terms() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.terms...)
}

func (c *Catalog) Has(term string) bool {
	if c == nil {
		return false
	}
	_, ok := c.buckets[term]
	return ok
}

// Bucket returns the records stored under term. The slice is shared with the
// catalog.
func (c *Catalog) Bucket(term string) ([]BusinessRecord, bool) {
	if c == nil {
		return nil, false
	}
	records, ok := c.buckets[term]
	return records, ok
}

// Set stores records under term. A new term is appended to the order; an
// existing one keeps its position.
func (c *Catalog) Set(term string, records []BusinessRecord) {
	if c.buckets == nil {
		c.buckets = map[string][]BusinessRecord{}
	}
	if records == nil {
		records = []BusinessRecord{}
	}
	if _, ok := c.buckets[term]; !ok {
		c.terms = append(c.terms, term)
	}
	c.buckets[term] = records
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, term := range c.terms {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(term)
		if err != nil {
			return nil, fmt.Errorf("domain: encode catalog term: %w", err)
		}
		records := c.buckets[term]
		if records == nil {
			records = []BusinessRecord{}
		}
		val, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("domain: encode bucket %q: %w", term, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	*c = Catalog{buckets: map[string][]BusinessRecord{}}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("domain: decode catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("domain: decode catalog: expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("domain: decode catalog: %w", err)
		}
		term, ok := tok.(string)
		if !ok {
			return errors.New("domain: decode catalog: expected term key")
		}
		var records []BusinessRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("domain: decode bucket %q: %w", term, err)
		}
		c.Set(term, records)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("domain: decode catalog: %w", err)
	}
	return nil
}
