package pipeline

import (
	"fmt"
	"strings"
)

// ValidateTransaction checks a raw JSON mapping against the sales
// transaction schema. On success it returns the typed transaction and a
// nil error list; on failure it returns every violated constraint in
// field order, one FieldError per violation. It is a pure function and
// never panics, whatever the mapping contains.
func ValidateTransaction(raw map[string]interface{}) (*Transaction, ValidationErrors) {
	var errs ValidationErrors
	tx := &Transaction{}

	if id, fieldErr := requiredString(raw, "transaction_id"); fieldErr != nil {
		errs = append(errs, *fieldErr)
	} else {
		tx.TransactionID = id
	}

	if id, fieldErr := requiredString(raw, "product_id"); fieldErr != nil {
		errs = append(errs, *fieldErr)
	} else {
		tx.ProductID = id
	}

	if amount, fieldErr := positiveNumber(raw, "amount"); fieldErr != nil {
		errs = append(errs, *fieldErr)
	} else {
		tx.Amount = amount
	}

	if customerID, fieldErr := optionalString(raw, "customer_id"); fieldErr != nil {
		errs = append(errs, *fieldErr)
	} else {
		tx.CustomerID = customerID
	}

	// currency is documented but unvalidated: carried through when it is
	// a string, ignored otherwise.
	if v, ok := raw["currency"]; ok {
		if s, ok := v.(string); ok && s != "" {
			tx.Currency = &s
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return tx, nil
}

func requiredString(raw map[string]interface{}, key string) (string, *FieldError) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", &FieldError{
			Field:   key,
			Type:    ErrMissing,
			Message: fmt.Sprintf("field %q is required", key),
		}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{
			Field:   key,
			Type:    ErrType,
			Message: fmt.Sprintf("field %q must be a string, got %T", key, v),
			Value:   v,
		}
	}
	if strings.TrimSpace(s) == "" {
		return "", &FieldError{
			Field:   key,
			Type:    ErrValue,
			Message: fmt.Sprintf("field %q must not be empty", key),
			Value:   s,
		}
	}
	return s, nil
}

func optionalString(raw map[string]interface{}, key string) (*string, *FieldError) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, &FieldError{
			Field:   key,
			Type:    ErrType,
			Message: fmt.Sprintf("field %q must be a string or null, got %T", key, v),
			Value:   v,
		}
	}
	return &s, nil
}

func positiveNumber(raw map[string]interface{}, key string) (float64, *FieldError) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, &FieldError{
			Field:   key,
			Type:    ErrMissing,
			Message: fmt.Sprintf("field %q is required", key),
		}
	}

	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int: // unlikely from encoding/json, but harmless to support
		f = float64(val)
	default:
		return 0, &FieldError{
			Field:   key,
			Type:    ErrType,
			Message: fmt.Sprintf("field %q must be a number, got %T", key, v),
			Value:   v,
		}
	}

	if f <= 0 {
		return 0, &FieldError{
			Field:   key,
			Type:    ErrValue,
			Message: fmt.Sprintf("field %q must be greater than 0", key),
			Value:   f,
		}
	}
	return f, nil
}
