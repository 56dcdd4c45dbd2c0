package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// errTrailingJSON JSON 值之後仍有資料
var errTrailingJSON = errors.New("unexpected data after JSON value")

// ParseJSONBytes 解析單一 JSON 值，允許未知欄位
func ParseJSONBytes(data []byte, v any) error {
	return decodeSingle(data, v, false)
}

// ParseJSONBytesStrict 解析單一 JSON 值，未知欄位視為錯誤
func ParseJSONBytesStrict(data []byte, v any) error {
	return decodeSingle(data, v, true)
}

// ToJSON 序列化為 JSON
func ToJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decodeSingle(data []byte, v any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return errTrailingJSON
	}
	return nil
}
