//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of RaceClean.
//
// RaceClean is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RaceClean is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RaceClean. If not, see https://www.gnu.org/licenses/.

// validators.go - Data quality checks run before and after cleaning
package validators

import (
	"errors"
	"fmt"
	"time"

	"github.com/aaronlmathis/raceclean/core"
)

var (
	ErrMissingField  = errors.New("required field missing")
	ErrTooFewRecords = errors.New("insufficient records")
	ErrNullRate      = errors.New("null rate exceeded")
	ErrFieldType     = errors.New("invalid field type")
)

// DataQualityValidator checks a table against record count, field presence,
// null rate and per-field type rules.
type DataQualityValidator struct {
	MinRecords      int                       // Minimum number of records required
	MaxNullRate     float64                   // Maximum allowed null rate per field (0.0-1.0, 0 = unchecked)
	RequiredFields  []string                  // Columns the table must have
	FieldValidators map[string]FieldValidator // Per-field validation rules
	CustomValidator func(t *core.Table) error // Optional extra check
}

// FieldValidator defines validation rules for individual fields
type FieldValidator struct {
	DataType   FieldDataType // Expected data type of present values
	AllowNulls bool          // Whether missing values are acceptable
}

// FieldDataType represents expected data types for validation
type FieldDataType string

const (
	FieldTypeString FieldDataType = "string"
	FieldTypeInt    FieldDataType = "int"
	FieldTypeFloat  FieldDataType = "float"
	FieldTypeDate   FieldDataType = "date"
	FieldTypeAny    FieldDataType = "any"
)

// Validate runs every configured check and returns the first failure.
// Errors wrap one of the package sentinels so callers can use errors.Is.
func (dqv *DataQualityValidator) Validate(t *core.Table) error {
	if t == nil {
		t = core.NewTable(nil)
	}

	if err := dqv.validateFieldPresence(t); err != nil {
		return err
	}

	if t.Len() < dqv.MinRecords {
		return fmt.Errorf("%w: got %d, need at least %d", ErrTooFewRecords, t.Len(), dqv.MinRecords)
	}

	if err := dqv.validateNullRates(t); err != nil {
		return err
	}

	if err := dqv.validateFieldValues(t); err != nil {
		return err
	}

	if dqv.CustomValidator != nil {
		if err := dqv.CustomValidator(t); err != nil {
			return fmt.Errorf("custom validation failed: %w", err)
		}
	}
	return nil
}

// MissingFields returns the required fields the table lacks, in declaration order.
func (dqv *DataQualityValidator) MissingFields(t *core.Table) []string {
	var missing []string
	for _, field := range dqv.RequiredFields {
		if !t.HasColumn(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func (dqv *DataQualityValidator) validateFieldPresence(t *core.Table) error {
	if missing := dqv.MissingFields(t); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingField, missing)
	}
	return nil
}

// validateNullRates checks the missing-value rate of each column
func (dqv *DataQualityValidator) validateNullRates(t *core.Table) error {
	if dqv.MaxNullRate <= 0 || t.Len() == 0 {
		return nil
	}

	for _, field := range t.Columns {
		nullCount := 0
		for _, record := range t.Rows {
			if core.IsMissing(record[field]) {
				nullCount++
			}
		}

		nullRate := float64(nullCount) / float64(t.Len())
		if nullRate > dqv.MaxNullRate {
			return fmt.Errorf("%w: field %s has null rate %.2f, maximum %.2f",
				ErrNullRate, field, nullRate, dqv.MaxNullRate)
		}
	}
	return nil
}

func (dqv *DataQualityValidator) validateFieldValues(t *core.Table) error {
	for fieldName, validator := range dqv.FieldValidators {
		for recordIdx, record := range t.Rows {
			value := record[fieldName]
			if core.IsMissing(value) {
				if validator.AllowNulls {
					continue
				}
				return fmt.Errorf("%w: record %d field %s is missing", ErrFieldType, recordIdx, fieldName)
			}
			if !validateDataType(value, validator.DataType) {
				return fmt.Errorf("%w: record %d field %s has %T, expected %s",
					ErrFieldType, recordIdx, fieldName, value, validator.DataType)
			}
		}
	}
	return nil
}

// validateDataType checks if a value matches the expected data type
func validateDataType(value interface{}, expectedType FieldDataType) bool {
	switch expectedType {
	case FieldTypeString:
		_, ok := value.(string)
		return ok
	case FieldTypeInt:
		switch value.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case FieldTypeFloat:
		switch value.(type) {
		case float32, float64:
			return true
		}
		return false
	case FieldTypeDate:
		_, ok := value.(time.Time)
		return ok
	default:
		return true
	}
}

// NewDataQualityValidator creates a basic data quality validator
func NewDataQualityValidator(minRecords int, requiredFields []string, options ...DataQualityOption) *DataQualityValidator {
	dqv := &DataQualityValidator{
		MinRecords:      minRecords,
		RequiredFields:  requiredFields,
		FieldValidators: make(map[string]FieldValidator),
	}
	for _, option := range options {
		option(dqv)
	}
	return dqv
}

// DataQualityOption is a functional option for configuring DataQualityValidator
type DataQualityOption func(*DataQualityValidator)

// WithMaxNullRate sets the maximum null value rate
func WithMaxNullRate(rate float64) DataQualityOption {
	return func(dqv *DataQualityValidator) {
		dqv.MaxNullRate = rate
	}
}

// WithFieldValidator adds a field-specific validator
func WithFieldValidator(fieldName string, validator FieldValidator) DataQualityOption {
	return func(dqv *DataQualityValidator) {
		if dqv.FieldValidators == nil {
			dqv.FieldValidators = make(map[string]FieldValidator)
		}
		dqv.FieldValidators[fieldName] = validator
	}
}

// WithCustomValidator sets a custom validation function
func WithCustomValidator(validator func(*core.Table) error) DataQualityOption {
	return func(dqv *DataQualityValidator) {
		dqv.CustomValidator = validator
	}
}
