package crowd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/aislemap-backend/internal/domain/mapping"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
)

// Subject identifies one physical fact a crowd can map: an aisle's label, an
// aisle's department, where a product category lives, or a store's price for
// a barcode. Its canonical string form is the fact table's unique key.
type Subject struct {
	Kind    string
	StoreID uuid.UUID

	Aisle      string // aisle, department
	Department string // department
	Category   string // product_location
	Barcode    string // price
}

const (
	prefixAisle      = "aisle"
	prefixDepartment = "dept"
	prefixLocation   = "loc"
	prefixPrice      = "price"
)

func AisleSubject(storeID uuid.UUID, aisle string) Subject {
	return Subject{Kind: mapping.SubjectKindAisle, StoreID: storeID, Aisle: normalizeToken(aisle)}
}

func DepartmentSubject(storeID uuid.UUID, aisle, department string) Subject {
	return Subject{Kind: mapping.SubjectKindDepartment, StoreID: storeID, Aisle: normalizeToken(aisle), Department: Slug(department)}
}

func LocationSubject(storeID uuid.UUID, category string) Subject {
	return Subject{Kind: mapping.SubjectKindProductLocation, StoreID: storeID, Category: Slug(category)}
}

func PriceSubject(storeID uuid.UUID, barcode string) Subject {
	return Subject{Kind: mapping.SubjectKindPrice, StoreID: storeID, Barcode: strings.TrimSpace(barcode)}
}

func (s Subject) Validate() error {
	if s.StoreID == uuid.Nil {
		return errors.Validationf("subject requires a store id")
	}
	switch s.Kind {
	case mapping.SubjectKindAisle:
		if s.Aisle == "" {
			return errors.Validationf("aisle subject requires an aisle number")
		}
	case mapping.SubjectKindDepartment:
		if s.Aisle == "" || s.Department == "" {
			return errors.Validationf("department subject requires an aisle number and department")
		}
	case mapping.SubjectKindProductLocation:
		if s.Category == "" {
			return errors.Validationf("product location subject requires a category")
		}
	case mapping.SubjectKindPrice:
		if !validBarcode(s.Barcode) {
			return errors.Validationf("price subject requires a numeric barcode (8-14 digits)")
		}
	default:
		return errors.Validationf("unknown subject kind %q", s.Kind)
	}
	return nil
}

// Key renders the canonical subject key, e.g. "price:<storeID>:<barcode>".
func (s Subject) Key() string {
	switch s.Kind {
	case mapping.SubjectKindAisle:
		return fmt.Sprintf("%s:%s:%s", prefixAisle, s.StoreID, s.Aisle)
	case mapping.SubjectKindDepartment:
		return fmt.Sprintf("%s:%s:%s:%s", prefixDepartment, s.StoreID, s.Aisle, s.Department)
	case mapping.SubjectKindProductLocation:
		return fmt.Sprintf("%s:%s:%s", prefixLocation, s.StoreID, s.Category)
	case mapping.SubjectKindPrice:
		return fmt.Sprintf("%s:%s:%s", prefixPrice, s.StoreID, s.Barcode)
	}
	return ""
}

// ParseSubjectKey inverts Key. Unknown prefixes and malformed store IDs fail
// with a validation error before anything touches storage.
func ParseSubjectKey(key string) (Subject, error) {
	parts := strings.Split(strings.TrimSpace(key), ":")
	if len(parts) < 3 {
		return Subject{}, errors.Validationf("malformed subject key %q", key)
	}
	storeID, err := uuid.Parse(parts[1])
	if err != nil {
		return Subject{}, errors.Validationf("subject key %q has a malformed store id", key)
	}

	var s Subject
	switch parts[0] {
	case prefixAisle:
		if len(parts) != 3 {
			return Subject{}, errors.Validationf("malformed aisle subject key %q", key)
		}
		s = AisleSubject(storeID, parts[2])
	case prefixDepartment:
		if len(parts) != 4 {
			return Subject{}, errors.Validationf("malformed department subject key %q", key)
		}
		s = DepartmentSubject(storeID, parts[2], parts[3])
	case prefixLocation:
		if len(parts) != 3 {
			return Subject{}, errors.Validationf("malformed location subject key %q", key)
		}
		s = LocationSubject(storeID, parts[2])
	case prefixPrice:
		if len(parts) != 3 {
			return Subject{}, errors.Validationf("malformed price subject key %q", key)
		}
		s = PriceSubject(storeID, parts[2])
	default:
		return Subject{}, errors.Validationf("unknown subject key prefix %q", parts[0])
	}
	if err := s.Validate(); err != nil {
		return Subject{}, err
	}
	return s, nil
}

// Slug lowercases and collapses a free-text label into a key-safe token.
func Slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validBarcode(s string) bool {
	if len(s) < 8 || len(s) > 14 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
