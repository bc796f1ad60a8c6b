package crowd

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/aislemap-backend/internal/domain/mapping"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
)

// Value is the tagged union stored in a fact's JSON column. One variant
// exists per subject kind so merge logic stays type-checked per variant
// instead of poking at a loose document.
type Value interface {
	SubjectKind() string
	Validate() error
}

type AisleValue struct {
	Label string `json:"label"`
}

func (AisleValue) SubjectKind() string { return mapping.SubjectKindAisle }

func (v AisleValue) Validate() error {
	if strings.TrimSpace(v.Label) == "" {
		return errors.Validationf("aisle value requires a label")
	}
	return nil
}

type DepartmentValue struct {
	Department string `json:"department"`
}

func (DepartmentValue) SubjectKind() string { return mapping.SubjectKindDepartment }

func (v DepartmentValue) Validate() error {
	if strings.TrimSpace(v.Department) == "" {
		return errors.Validationf("department value requires a department name")
	}
	return nil
}

type LocationValue struct {
	Department  string `json:"department"`
	AisleNumber string `json:"aisle_number,omitempty"`
}

func (LocationValue) SubjectKind() string { return mapping.SubjectKindProductLocation }

func (v LocationValue) Validate() error {
	if strings.TrimSpace(v.Department) == "" {
		return errors.Validationf("location value requires a department name")
	}
	return nil
}

type PriceValue struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Unit     string  `json:"unit,omitempty"` // "each", "lb", "kg", ...
}

func (PriceValue) SubjectKind() string { return mapping.SubjectKindPrice }

func (v PriceValue) Validate() error {
	if v.Price <= 0 {
		return errors.Validationf("price must be positive")
	}
	if len(v.Currency) != 3 {
		return errors.Validationf("currency must be a 3-letter code")
	}
	return nil
}

// EncodeValue validates a variant and renders it for the fact's JSON column.
// The variant must match the subject's kind.
func EncodeValue(subjectKind string, v Value) (datatypes.JSON, error) {
	if v == nil {
		return nil, errors.Validationf("a value is required")
	}
	if v.SubjectKind() != subjectKind {
		return nil, errors.Validationf("value kind %q does not match subject kind %q", v.SubjectKind(), subjectKind)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Validationf("value not serializable: %v", err)
	}
	return datatypes.JSON(raw), nil
}

// DecodeValue parses a fact's JSON column back into the variant for its kind.
func DecodeValue(subjectKind string, raw datatypes.JSON) (Value, error) {
	switch subjectKind {
	case mapping.SubjectKindAisle:
		var v AisleValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case mapping.SubjectKindDepartment:
		var v DepartmentValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case mapping.SubjectKindProductLocation:
		var v LocationValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	case mapping.SubjectKindPrice:
		var v PriceValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, errors.Validationf("unknown subject kind %q", subjectKind)
}
