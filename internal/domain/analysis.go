package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Reference is one external source backing an analysis point.
type Reference struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// AnalysisPoint is one claim about the keyword plus its supporting
// references. SearchQuery is the query used to look up references; it is
// persisted alongside the point so a failed enrichment can be diagnosed
// from the stored record.
type AnalysisPoint struct {
	Point       string      `json:"point"`
	SearchQuery string      `json:"searchQuery"`
	References  []Reference `json:"references"`
}

// PostCategory is the voice of a generated social post.
type PostCategory string

const (
	PostCategoryComedic PostCategory = "comedic"
	PostCategorySerious PostCategory = "serious"
)

// SocialPost is one generated promotional text.
type SocialPost struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Category PostCategory `json:"category"`
}

// PointList is an ordered list of analysis points stored as a JSON column.
type PointList []AnalysisPoint

// Value implements the driver.Valuer interface for database serialization.
// A nil list serializes to an empty JSON array, never SQL NULL.
func (p PointList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *PointList) Scan(value interface{}) error {
	if value == nil {
		*p = PointList{}
		return nil
	}
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, p)
}

// SocialPostBundle groups generated posts by category and is stored as a
// JSON column. When generation fails, both slices are empty; neither is
// ever nil once a scrape completes.
type SocialPostBundle struct {
	Comedic []SocialPost `json:"comedic"`
	Serious []SocialPost `json:"serious"`
}

// EmptySocialPostBundle returns a bundle with allocated empty categories.
func EmptySocialPostBundle() SocialPostBundle {
	return SocialPostBundle{
		Comedic: []SocialPost{},
		Serious: []SocialPost{},
	}
}

// Value implements the driver.Valuer interface for database serialization.
func (b SocialPostBundle) Value() (driver.Value, error) {
	if b.Comedic == nil {
		b.Comedic = []SocialPost{}
	}
	if b.Serious == nil {
		b.Serious = []SocialPost{}
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (b *SocialPostBundle) Scan(value interface{}) error {
	if value == nil {
		*b = EmptySocialPostBundle()
		return nil
	}
	raw, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, b)
}

// LinkList is a list of raw URLs stored as a JSON column.
type LinkList []string

// Value implements the driver.Valuer interface for database serialization.
func (l LinkList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (l *LinkList) Scan(value interface{}) error {
	if value == nil {
		*l = LinkList{}
		return nil
	}
	b, err := columnBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, l)
}

func columnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported column type for JSON scan")
	}
}
