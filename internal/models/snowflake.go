package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// maxSafeInteger is the largest integer a JSON consumer backed by IEEE-754
// doubles can represent exactly (2^53 - 1). Discord snowflakes exceed it.
const maxSafeInteger = 9007199254740991

// Snowflake is a platform object identifier. It is stored as a 64-bit
// integer but serialized as a decimal string whenever the value would lose
// precision in a JavaScript client.
type Snowflake int64

// String returns the decimal representation of the snowflake.
func (s Snowflake) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// MarshalJSON writes values above the safe-integer range as quoted decimal
// strings and everything else as a plain JSON number.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	if int64(s) > maxSafeInteger || int64(s) < -maxSafeInteger {
		return json.Marshal(s.String())
	}
	return []byte(strconv.FormatInt(int64(s), 10)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid snowflake %q: %w", v, err)
		}
		*s = Snowflake(n)
		return nil
	case float64:
		*s = Snowflake(int64(v))
		return nil
	default:
		return fmt.Errorf("invalid snowflake type %T", raw)
	}
}

// SnowflakeList is a set of snowflakes stored as a JSONB column of decimal
// strings, so database dumps never round-trip through a lossy number type.
type SnowflakeList []Snowflake

// Value implements driver.Valuer.
func (l SnowflakeList) Value() (driver.Value, error) {
	strs := make([]string, len(l))
	for i, s := range l {
		strs[i] = s.String()
	}
	return json.Marshal(strs)
}

// Scan implements sql.Scanner. It accepts JSON arrays of strings or numbers.
func (l *SnowflakeList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SnowflakeList", value)
	}
	var raw []json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		// Fall back to an array of strings.
		var strs []string
		if serr := json.Unmarshal(data, &strs); serr != nil {
			return err
		}
		raw = raw[:0]
		for _, s := range strs {
			raw = append(raw, json.Number(s))
		}
	}
	out := make(SnowflakeList, 0, len(raw))
	for _, n := range raw {
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid snowflake %q in list: %w", n, err)
		}
		out = append(out, Snowflake(i))
	}
	*l = out
	return nil
}

// Strings returns the decimal-string form of every snowflake in the list.
func (l SnowflakeList) Strings() []string {
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = s.String()
	}
	return out
}

// Contains reports whether id is present in the list.
func (l SnowflakeList) Contains(id Snowflake) bool {
	for _, s := range l {
		if s == id {
			return true
		}
	}
	return false
}

// StringList is a list of strings stored as a JSONB column. Used for tags.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	return json.Unmarshal(data, (*[]string)(l))
}
