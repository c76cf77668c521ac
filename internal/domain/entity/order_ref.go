package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
)

// OrderRef identifies a billable order across variants. The zero value
// refers to no order.
type OrderRef struct {
	kind enum.OrderKind
	id   uint
}

// PrintJobRef references a print job
func PrintJobRef(id uint) OrderRef {
	return OrderRef{kind: enum.OrderKindPrintJob, id: id}
}

// PhotoSessionRef references a photo session
func PhotoSessionRef(id uint) OrderRef {
	return OrderRef{kind: enum.OrderKindPhotoSession, id: id}
}

// NewOrderRef validates kind and id and builds a reference
func NewOrderRef(kind enum.OrderKind, id uint) (OrderRef, error) {
	if !kind.IsValid() {
		return OrderRef{}, fmt.Errorf("unknown order kind %q", kind)
	}
	if id == 0 {
		return OrderRef{}, fmt.Errorf("order id must be positive")
	}
	return OrderRef{kind: kind, id: id}, nil
}

// ParseOrderRef parses the "<kind>:<id>" form produced by String
func ParseOrderRef(s string) (OrderRef, error) {
	kindStr, idStr, ok := strings.Cut(s, ":")
	if !ok {
		return OrderRef{}, fmt.Errorf("malformed order reference %q", s)
	}
	kind, err := enum.ParseOrderKind(kindStr)
	if err != nil {
		return OrderRef{}, err
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return OrderRef{}, fmt.Errorf("malformed order id %q", idStr)
	}
	return NewOrderRef(kind, uint(id))
}

func (r OrderRef) Kind() enum.OrderKind { return r.kind }

func (r OrderRef) ID() uint { return r.id }

func (r OrderRef) IsZero() bool { return r.id == 0 }

func (r OrderRef) String() string {
	if r.IsZero() {
		return "none"
	}
	return string(r.kind) + ":" + strconv.FormatUint(uint64(r.id), 10)
}

func (r OrderRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Kind enum.OrderKind `json:"kind"`
		ID   uint           `json:"id"`
	}{r.kind, r.id})
}
