package pipe

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"unicode/utf8"

	"github.com/walterwhite-69/Miruro-API/internal/jsonvalue"
)

// ProtocolVersion is the version tag every request intent carries
const ProtocolVersion = "0.1.0"

// Decode stages recorded on DecodeError
const (
	StageBase64 = "base64"
	StageGzip   = "gzip"
	StageUTF8   = "utf8"
	StageJSON   = "json"
)

// RequestIntent is the JSON document the pipe endpoint expects in its e parameter
type RequestIntent struct {
	Path    string         `json:"path"`
	Method  string         `json:"method"`
	Query   map[string]any `json:"query"`
	Body    any            `json:"body"`
	Version string         `json:"version"`
}

// NewRequestIntent builds a GET intent for path. query is copied.
func NewRequestIntent(path string, query map[string]any) RequestIntent {
	return RequestIntent{
		Path:    path,
		Method:  "GET",
		Query:   maps.Clone(query),
		Body:    nil,
		Version: ProtocolVersion,
	}
}

// EncodeRequest serializes intent as unpadded base64url JSON
func EncodeRequest(intent RequestIntent) string {
	data, err := json.Marshal(intent)
	if err != nil {
		// only reachable when a caller puts a non-JSON value in Query
		panic(fmt.Sprintf("pipe: encode request intent: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeError is returned for any failure while unwrapping a pipe response.
// Error never includes Stage or Err; those are for logs.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return "failed to decode pipe response"
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeResponse unwraps a pipe response blob: base64url, then gzip, then JSON
func DecodeResponse(blob string) (*jsonvalue.Value, error) {
	compressed, err := base64.URLEncoding.DecodeString(RestorePadding(blob))
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Err: err}
	}

	raw, err := gunzip(compressed)
	if err != nil {
		return nil, &DecodeError{Stage: StageGzip, Err: err}
	}

	if !utf8.Valid(raw) {
		return nil, &DecodeError{Stage: StageUTF8, Err: errors.New("payload is not valid UTF-8")}
	}

	payload, err := jsonvalue.Parse(raw)
	if err != nil {
		return nil, &DecodeError{Stage: StageJSON, Err: err}
	}

	return payload, nil
}

// EncodeResponse is the inverse of DecodeResponse: raw JSON in, response blob out
func EncodeResponse(payload []byte) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return "", fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func gunzip(compressed []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	// reading to EOF verifies the trailer checksum and size
	return io.ReadAll(zr)
}
