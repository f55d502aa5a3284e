// Package record defines the canonical WARN notice record: the closed set of
// fields every source is reconciled into, plus the raw-value side channel
// kept for traceability.
package record

// Field is a canonical field identifier. The set is closed: source column
// mappings are validated against it at configuration load, so a misspelled
// canonical name fails the run at startup instead of producing null fields.
type Field string

const (
	FieldCompany       Field = "company"
	FieldNoticeDate    Field = "notice_date"
	FieldEffectiveDate Field = "effective_date"
	FieldEmployeeCount Field = "employee_count"
	FieldAddress       Field = "address"
	FieldCounty        Field = "county"
	FieldLayoffType    Field = "layoff_type"
	FieldReason        Field = "reason"
	FieldUnion         Field = "union"
	FieldNoticeURL     Field = "notice_url"
	FieldPhone         Field = "phone"
	FieldNotes         Field = "notes"
)

// Kind is the coerced value type a field carries.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindInt
)

var fieldKinds = map[Field]Kind{
	FieldCompany:       KindString,
	FieldNoticeDate:    KindDate,
	FieldEffectiveDate: KindDate,
	FieldEmployeeCount: KindInt,
	FieldAddress:       KindString,
	FieldCounty:        KindString,
	FieldLayoffType:    KindString,
	FieldReason:        KindString,
	FieldUnion:         KindString,
	FieldNoticeURL:     KindString,
	FieldPhone:         KindString,
	FieldNotes:         KindString,
}

// Fields lists every canonical field in stable output order. Hashing and
// serialization both rely on this order being fixed.
var Fields = []Field{
	FieldCompany,
	FieldNoticeDate,
	FieldEffectiveDate,
	FieldEmployeeCount,
	FieldAddress,
	FieldCounty,
	FieldLayoffType,
	FieldReason,
	FieldUnion,
	FieldNoticeURL,
	FieldPhone,
	FieldNotes,
}

// Required are the fields a row must carry to become a record: without a
// company identity and a notice date the row is not a usable notice.
var Required = []Field{FieldCompany, FieldNoticeDate}

// Known reports whether name is a canonical field and returns it.
func Known(name string) (Field, bool) {
	f := Field(name)
	_, ok := fieldKinds[f]
	return f, ok
}

// Kind returns the value kind for the field. Unknown fields read as strings.
func (f Field) Kind() Kind {
	k, ok := fieldKinds[f]
	if !ok {
		return KindString
	}
	return k
}

// IsRequired reports whether the field is part of the required set.
func (f Field) IsRequired() bool {
	for _, r := range Required {
		if r == f {
			return true
		}
	}
	return false
}
