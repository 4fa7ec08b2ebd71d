package enum

import (
	"encoding/json"
	"fmt"
)

// CustomerRefKind says how a bill refers to its customer.
type CustomerRefKind string

const (
	// CustomerRefNone is an anonymous counter sale.
	CustomerRefNone CustomerRefKind = "none"
	// CustomerRefKnown points at a registered customer by id.
	CustomerRefKnown CustomerRefKind = "known"
	// CustomerRefWalkIn carries a name and phone snapshot without registering anyone.
	CustomerRefWalkIn CustomerRefKind = "walk_in"
)

func (k CustomerRefKind) String() string {
	return string(k)
}

// Valid reports whether k is a known reference kind.
func (k CustomerRefKind) Valid() bool {
	switch k {
	case CustomerRefNone, CustomerRefKnown, CustomerRefWalkIn:
		return true
	}
	return false
}

func (k CustomerRefKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

func (k *CustomerRefKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*k = CustomerRefNone
		return nil
	}
	v := CustomerRefKind(str)
	if !v.Valid() {
		return fmt.Errorf("invalid customer reference kind %q", str)
	}
	*k = v
	return nil
}
