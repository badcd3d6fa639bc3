package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/andreyxaxa/listing-admin/internal/entity"
)

// Manifest keys.
const (
	fieldTitle         = "title"
	fieldDescription   = "description"
	fieldPrice         = "new_price"
	fieldOldPrice      = "old_price"
	fieldCategory      = "category"
	fieldOrientation   = "orientation"
	fieldLicense       = "license"
	fieldTags          = "tags"
	fieldThumbnailFile = "thumbnail_file"
	fieldProductFile   = "product_file"
)

// RequiredFields in the order they are reported.
var RequiredFields = []string{
	fieldTitle,
	fieldDescription,
	fieldPrice,
	fieldCategory,
	fieldOrientation,
	fieldLicense,
	fieldThumbnailFile,
	fieldProductFile,
}

type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("Invalid field %s: %s", e.Field, e.Reason)
}

// Record is a manifest entry that passed validation.
type Record struct {
	Title       string
	Description string
	Category    string
	Orientation entity.Orientation
	License     entity.License
	Price       float64
	OldPrice    *float64
	Tags        []string

	ThumbnailFile string
	ProductFile   string
}

// Validate reports every required key that is missing or empty. Empty
// means null, "", false or 0.
func Validate(raw RawRecord) error {
	var missing []string

	for _, f := range RequiredFields {
		if !present(raw[f]) {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	return nil
}

// ParseRecord validates raw and converts it to a Record.
func ParseRecord(raw RawRecord) (Record, error) {
	if err := Validate(raw); err != nil {
		return Record{}, err
	}

	var (
		r   Record
		err error
	)

	strs := []struct {
		field string
		dst   *string
	}{
		{fieldTitle, &r.Title},
		{fieldDescription, &r.Description},
		{fieldCategory, &r.Category},
		{fieldThumbnailFile, &r.ThumbnailFile},
		{fieldProductFile, &r.ProductFile},
	}
	for _, s := range strs {
		if *s.dst, err = parseString(raw, s.field); err != nil {
			return Record{}, err
		}
	}

	orientation, err := parseString(raw, fieldOrientation)
	if err != nil {
		return Record{}, err
	}
	switch o := entity.Orientation(strings.ToLower(strings.TrimSpace(orientation))); o {
	case entity.Landscape, entity.Portrait, entity.Square:
		r.Orientation = o
	default:
		return Record{}, &InvalidFieldError{Field: fieldOrientation, Reason: "must be landscape, portrait or square"}
	}

	license, err := parseString(raw, fieldLicense)
	if err != nil {
		return Record{}, err
	}
	switch l := entity.License(strings.ToLower(strings.TrimSpace(license))); l {
	case entity.Free, entity.Premium:
		r.License = l
	default:
		return Record{}, &InvalidFieldError{Field: fieldLicense, Reason: "must be free or premium"}
	}

	if r.Price, err = parsePrice(raw[fieldPrice], fieldPrice); err != nil {
		return Record{}, err
	}

	if present(raw[fieldOldPrice]) {
		p, err := parsePrice(raw[fieldOldPrice], fieldOldPrice)
		if err != nil {
			return Record{}, err
		}
		r.OldPrice = &p
	}

	if r.Tags, err = parseTags(raw[fieldTags]); err != nil {
		return Record{}, err
	}

	return r, nil
}

func present(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)

	switch string(v) {
	case "", "null", `""`, "false":
		return false
	}

	// 0, -0, 0.0, 0e3
	if f, err := strconv.ParseFloat(string(v), 64); err == nil && f == 0 {
		return false
	}

	return true
}

func parseString(raw RawRecord, field string) (string, error) {
	var s string
	if err := json.Unmarshal(raw[field], &s); err != nil {
		return "", &InvalidFieldError{Field: field, Reason: "must be a string"}
	}

	return s, nil
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(v json.RawMessage, field string) (float64, error) {
	var n json.Number

	if err := json.Unmarshal(v, &n); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, &InvalidFieldError{Field: field, Reason: "must be a number"}
		}
		n = json.Number(strings.TrimSpace(s))
	}

	f, err := n.Float64()
	if err != nil {
		return 0, &InvalidFieldError{Field: field, Reason: "must be a number"}
	}

	if f < 0 {
		return 0, &InvalidFieldError{Field: field, Reason: "must not be negative"}
	}

	return f, nil
}

func parseTags(v json.RawMessage) ([]string, error) {
	if !present(v) {
		return nil, nil
	}

	var tags []string
	if err := json.Unmarshal(v, &tags); err != nil {
		return nil, &InvalidFieldError{Field: fieldTags, Reason: "must be an array of strings"}
	}

	return tags, nil
}
