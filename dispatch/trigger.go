package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// ErrMalformedNotification is returned for a storage notification that
// names no bucket or no object key.
var ErrMalformedNotification = errors.New("dispatch: malformed storage notification")

// Trigger is one of FetchTrigger or ParseTrigger.
type Trigger interface {
	isTrigger()
}

// FetchTrigger starts the download stage.
type FetchTrigger struct {
	// Fallback is set when the payload was not understood and the fetch
	// path was taken by default.
	Fallback string
}

// ParseTrigger starts the parse stage for one archived artifact.
type ParseTrigger struct {
	Bucket string
	Key    string
}

func (FetchTrigger) isTrigger() {}
func (ParseTrigger) isTrigger() {}

// DecodeTrigger classifies an inbound payload. A payload whose first
// Records entry carries an "s3" section is a ParseTrigger; everything else,
// including payloads that are not JSON objects, is a FetchTrigger.
func DecodeTrigger(payload []byte) (Trigger, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return FetchTrigger{}, nil
	}

	// field names are matched case-sensitively
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return FetchTrigger{Fallback: fmt.Sprintf("undecodable payload: %v", err)}, nil
	}
	rawRecords, ok := fields["Records"]
	if !ok {
		for name := range fields {
			if strings.EqualFold(name, "Records") {
				return FetchTrigger{Fallback: fmt.Sprintf("unrecognized field %q", name)}, nil
			}
		}
		return FetchTrigger{}, nil
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(rawRecords, &records); err != nil {
		return FetchTrigger{Fallback: fmt.Sprintf("undecodable Records: %v", err)}, nil
	}
	if len(records) == 0 {
		return FetchTrigger{}, nil
	}

	raw, ok := records[0]["s3"]
	if !ok {
		return FetchTrigger{Fallback: "first record is not a storage notification"}, nil
	}

	var entity events.S3Entity
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
	}
	if entity.Bucket.Name == "" || entity.Object.URLDecodedKey == "" {
		return nil, fmt.Errorf("%w: bucket %q key %q", ErrMalformedNotification, entity.Bucket.Name, entity.Object.Key)
	}

	return ParseTrigger{Bucket: entity.Bucket.Name, Key: entity.Object.URLDecodedKey}, nil
}
