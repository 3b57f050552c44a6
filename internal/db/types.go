package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueType represents the type of a database value
type ValueType string

const (
	ValueTypeNull      ValueType = "null"
	ValueTypeInteger   ValueType = "integer"
	ValueTypeFloat     ValueType = "float"
	ValueTypeText      ValueType = "text"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeBinary    ValueType = "binary"
	ValueTypeTimestamp ValueType = "timestamp"
)

// IsNumeric reports whether values of this type can be plotted on a numeric
// axis.
func (t ValueType) IsNumeric() bool {
	return t == ValueTypeInteger || t == ValueTypeFloat
}

// Value represents a unified database value
type Value struct {
	Type  ValueType   `json:"type"`
	Data  interface{} `json:"data"`
	Valid bool        `json:"valid"`
}

// NewNullValue creates a new null value
func NewNullValue() Value {
	return Value{Type: ValueTypeNull, Data: nil, Valid: false}
}

// NewIntegerValue creates a new integer value
func NewIntegerValue(v int64) Value {
	return Value{Type: ValueTypeInteger, Data: v, Valid: true}
}

// NewFloatValue creates a new float value
func NewFloatValue(v float64) Value {
	return Value{Type: ValueTypeFloat, Data: v, Valid: true}
}

// NewTextValue creates a new text value
func NewTextValue(v string) Value {
	return Value{Type: ValueTypeText, Data: v, Valid: true}
}

// NewBooleanValue creates a new boolean value
func NewBooleanValue(v bool) Value {
	return Value{Type: ValueTypeBoolean, Data: v, Valid: true}
}

// NewBinaryValue creates a new binary value
func NewBinaryValue(v []byte) Value {
	return Value{Type: ValueTypeBinary, Data: v, Valid: true}
}

// NewTimestampValue creates a new timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, Data: t, Valid: true}
}

// AsInt64 returns value as int64
func (v Value) AsInt64() (int64, bool) {
	if v.Type == ValueTypeInteger && v.Valid {
		return v.Data.(int64), true
	}
	return 0, false
}

// AsFloat64 returns value as float64. Integer values convert.
func (v Value) AsFloat64() (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	switch v.Type {
	case ValueTypeFloat:
		return v.Data.(float64), true
	case ValueTypeInteger:
		return float64(v.Data.(int64)), true
	}
	return 0, false
}

// AsString returns value as string
func (v Value) AsString() (string, bool) {
	if v.Type == ValueTypeText && v.Valid {
		return v.Data.(string), true
	}
	return "", false
}

// AsBool returns value as bool
func (v Value) AsBool() (bool, bool) {
	if v.Type == ValueTypeBoolean && v.Valid {
		return v.Data.(bool), true
	}
	return false, false
}

// IsNull returns true if value is null
func (v Value) IsNull() bool {
	return v.Type == ValueTypeNull || !v.Valid
}

// Display renders the value the way it should appear in a table cell or CSV
// export. Null renders as the empty string.
func (v Value) Display() string {
	if v.IsNull() {
		return ""
	}
	switch v.Type {
	case ValueTypeInteger:
		return strconv.FormatInt(v.Data.(int64), 10)
	case ValueTypeFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case ValueTypeText:
		return v.Data.(string)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Data.(bool))
	case ValueTypeBinary:
		return string(v.Data.([]byte))
	case ValueTypeTimestamp:
		return v.Data.(time.Time).Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v.Data)
	}
}

// Column represents a result column
type Column struct {
	Name string    `json:"name"`
	Type ValueType `json:"type"`
}

// Row represents a result row
type Row struct {
	Values []Value `json:"values"`
}

// ResultSet represents a query result set
type ResultSet struct {
	Columns  []Column `json:"columns"`
	Rows     []Row    `json:"rows"`
	RowCount int      `json:"row_count"`
}

// ColumnNames returns the column names in order.
func (rs *ResultSet) ColumnNames() []string {
	names := make([]string, len(rs.Columns))
	for i, col := range rs.Columns {
		names[i] = col.Name
	}
	return names
}

// ConvertSQLRows converts sql.Rows to a ResultSet
func ConvertSQLRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result := &ResultSet{
		Columns: make([]Column, len(columns)),
		Rows:    []Row{},
	}
	for i, col := range columns {
		result.Columns[i] = Column{
			Name: col,
			Type: mapSQLTypeToValueType(columnTypes[i].DatabaseTypeName()),
		}
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := Row{Values: make([]Value, len(columns))}
		for i, val := range values {
			row.Values[i] = convertSQLValue(val, result.Columns[i].Type)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// mapSQLTypeToValueType maps SQL type names to ValueType
func mapSQLTypeToValueType(sqlType string) ValueType {
	t := strings.ToLower(sqlType)
	switch {
	case strings.Contains(t, "int"), strings.Contains(t, "serial"):
		return ValueTypeInteger
	case strings.Contains(t, "float"), strings.Contains(t, "double"),
		strings.Contains(t, "real"), strings.Contains(t, "decimal"), strings.Contains(t, "numeric"):
		return ValueTypeFloat
	case strings.Contains(t, "bool"):
		return ValueTypeBoolean
	case strings.Contains(t, "timestamp"), strings.Contains(t, "date"), strings.Contains(t, "time"):
		return ValueTypeTimestamp
	case strings.Contains(t, "blob"), strings.Contains(t, "binary"):
		return ValueTypeBinary
	default:
		return ValueTypeText
	}
}

// convertSQLValue converts a scanned driver value to a Value
func convertSQLValue(val interface{}, expectedType ValueType) Value {
	if val == nil {
		return NewNullValue()
	}

	switch v := val.(type) {
	case int64:
		if expectedType == ValueTypeBoolean {
			return NewBooleanValue(v != 0)
		}
		return NewIntegerValue(v)
	case float64:
		return NewFloatValue(v)
	case string:
		return NewTextValue(v)
	case bool:
		return NewBooleanValue(v)
	case []byte:
		return NewBinaryValue(v)
	case time.Time:
		if v.IsZero() {
			return NewNullValue()
		}
		return NewTimestampValue(v)
	default:
		return NewTextValue(fmt.Sprintf("%v", v))
	}
}
