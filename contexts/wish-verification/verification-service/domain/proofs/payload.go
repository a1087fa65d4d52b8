package proofs

import (
	"encoding/json"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/contracts/apperrors"
)

// Payload is the method-specific evidence attached to a proof. The set of
// implementations is closed; validate is unexported so every variant is
// checked by this package.
type Payload interface {
	Method() entities.ProofMethod
	validate() error
}

type MediaPayload struct {
	ContentURI  string `json:"content_uri"`
	ContentHash string `json:"content_hash"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (MediaPayload) Method() entities.ProofMethod { return entities.ProofMethodMedia }

type GeolocationPayload struct {
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	AccuracyMeters float64  `json:"accuracy_meters,omitempty"`
}

func (GeolocationPayload) Method() entities.ProofMethod { return entities.ProofMethodGeolocation }

type ExternalActivityPayload struct {
	Provider   string `json:"provider,omitempty"`
	ActivityID string `json:"activity_id"`
}

func (ExternalActivityPayload) Method() entities.ProofMethod {
	return entities.ProofMethodExternalActivity
}

type RepositoryCommitPayload struct {
	RepositoryURL string `json:"repository_url"`
	CommitHash    string `json:"commit_hash"`
}

func (RepositoryCommitPayload) Method() entities.ProofMethod {
	return entities.ProofMethodRepositoryCommit
}

// CustomPayload carries free-form structured evidence.
type CustomPayload struct {
	Fields map[string]any
}

func (CustomPayload) Method() entities.ProofMethod { return entities.ProofMethodCustom }

func (p CustomPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields)
}

func (p *CustomPayload) UnmarshalJSON(raw []byte) error {
	return json.Unmarshal(raw, &p.Fields)
}

// DecodePayload parses raw JSON into the variant declared by method.
func DecodePayload(method entities.ProofMethod, raw []byte) (Payload, error) {
	if len(raw) == 0 {
		return nil, apperrors.Invalid("payload", "is required")
	}
	var (
		payload Payload
		err     error
	)
	switch method {
	case entities.ProofMethodMedia:
		var p MediaPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case entities.ProofMethodGeolocation:
		var p GeolocationPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case entities.ProofMethodExternalActivity:
		var p ExternalActivityPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case entities.ProofMethodRepositoryCommit:
		var p RepositoryCommitPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case entities.ProofMethodCustom:
		var p CustomPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	default:
		return nil, apperrors.Invalid("method", "unsupported proof method")
	}
	if err != nil {
		return nil, apperrors.Invalid("payload", "malformed "+string(method)+" payload")
	}
	return payload, nil
}

// Encode returns the canonical stored form of a payload.
func Encode(payload Payload) ([]byte, error) {
	return json.Marshal(payload)
}

// SanitizeText applies clean to free-text values of custom payloads. Other
// variants carry only identifiers and are returned unchanged.
func SanitizeText(payload Payload, clean func(string) string) Payload {
	custom, ok := payload.(CustomPayload)
	if !ok || clean == nil {
		return payload
	}
	fields := make(map[string]any, len(custom.Fields))
	for key, value := range custom.Fields {
		if text, ok := value.(string); ok {
			fields[key] = clean(text)
			continue
		}
		fields[key] = value
	}
	return CustomPayload{Fields: fields}
}
