package invest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Quotation is the wire representation of a price or amount: integer units
// plus a nano fraction (1e-9). The REST gateway serializes the int64 units
// field as a JSON string, so decoding accepts both forms.
type Quotation struct {
	Units int64
	Nano  int32
}

type quotationJSON struct {
	Units string `json:"units"`
	Nano  int32  `json:"nano"`
}

func (q Quotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(quotationJSON{
		Units: strconv.FormatInt(q.Units, 10),
		Nano:  q.Nano,
	})
}

func (q *Quotation) UnmarshalJSON(b []byte) error {
	var aux struct {
		Units json.RawMessage `json:"units"`
		Nano  int32           `json:"nano"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	q.Nano = aux.Nano
	q.Units = 0
	if len(aux.Units) > 0 && !bytes.Equal(aux.Units, []byte("null")) {
		raw := bytes.Trim(aux.Units, `"`)
		units, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("parse quotation units %q: %w", raw, err)
		}
		q.Units = units
	}
	return nil
}

// IsZero reports whether the quotation carries no value.
func (q Quotation) IsZero() bool {
	return q.Units == 0 && q.Nano == 0
}

// Decimal converts the quotation into an exact decimal value.
func (q Quotation) Decimal() decimal.Decimal {
	return decimal.New(q.Units, 0).Add(decimal.New(int64(q.Nano), -9))
}

// QuotationFromDecimal splits d into units and nano parts. Units and nano
// always carry the same sign, matching the wire format contract.
func QuotationFromDecimal(d decimal.Decimal) Quotation {
	units := d.IntPart()
	nano := d.Sub(decimal.New(units, 0)).Mul(decimal.New(1, 9)).IntPart()
	return Quotation{Units: units, Nano: int32(nano)}
}

// flexInt64 decodes int64 wire fields that the gateway serializes as JSON
// strings but that also legitimately appear as numbers.
type flexInt64 int64

func (v *flexInt64) UnmarshalJSON(b []byte) error {
	raw := bytes.Trim(b, `"`)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("parse int64 field %q: %w", raw, err)
	}
	*v = flexInt64(n)
	return nil
}

// MoneyValue is a Quotation with a currency code attached.
type MoneyValue struct {
	Currency string
	Quotation
}

type moneyValueJSON struct {
	Currency string `json:"currency"`
	Units    string `json:"units"`
	Nano     int32  `json:"nano"`
}

func (m MoneyValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyValueJSON{
		Currency: m.Currency,
		Units:    strconv.FormatInt(m.Units, 10),
		Nano:     m.Nano,
	})
}

func (m *MoneyValue) UnmarshalJSON(b []byte) error {
	var aux struct {
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if err := m.Quotation.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Currency = aux.Currency
	return nil
}
