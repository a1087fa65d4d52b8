package proofs

import (
	"errors"
	"strings"
	"testing"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/contracts/apperrors"
)

func float(v float64) *float64 { return &v }

func TestValidateAcceptsWellFormedPayloads(t *testing.T) {
	cases := []struct {
		name    string
		method  entities.ProofMethod
		payload Payload
	}{
		{"media", entities.ProofMethodMedia, MediaPayload{ContentURI: "ipfs://clip", ContentHash: "bafy123"}},
		{"geolocation bounds", entities.ProofMethodGeolocation, GeolocationPayload{Latitude: float(-90), Longitude: float(180)}},
		{"external activity", entities.ProofMethodExternalActivity, ExternalActivityPayload{Provider: "strava", ActivityID: "run-42"}},
		{"repository commit", entities.ProofMethodRepositoryCommit, RepositoryCommitPayload{
			RepositoryURL: "https://GitHub.com/acme/widgets",
			CommitHash:    strings.Repeat("a1", 20),
		}},
		{"custom", entities.ProofMethodCustom, CustomPayload{Fields: map[string]any{"note": "finished the marathon"}}},
		{"custom numeric", entities.ProofMethodCustom, CustomPayload{Fields: map[string]any{"km": 42.2}}},
	}
	for _, tc := range cases {
		if err := Validate(tc.method, tc.payload); err != nil {
			t.Fatalf("%s: expected valid payload, got %v", tc.name, err)
		}
	}
}

func TestValidateNamesOffendingField(t *testing.T) {
	cases := []struct {
		name    string
		method  entities.ProofMethod
		payload Payload
		field   string
	}{
		{"media missing uri", entities.ProofMethodMedia, MediaPayload{ContentHash: "h"}, "content_uri"},
		{"media missing hash", entities.ProofMethodMedia, MediaPayload{ContentURI: "u"}, "content_hash"},
		{"latitude missing", entities.ProofMethodGeolocation, GeolocationPayload{Longitude: float(1)}, "latitude"},
		{"latitude out of range", entities.ProofMethodGeolocation, GeolocationPayload{Latitude: float(90.5), Longitude: float(1)}, "latitude"},
		{"longitude out of range", entities.ProofMethodGeolocation, GeolocationPayload{Latitude: float(1), Longitude: float(-180.1)}, "longitude"},
		{"activity missing", entities.ProofMethodExternalActivity, ExternalActivityPayload{Provider: "strava"}, "activity_id"},
		{"unknown host", entities.ProofMethodRepositoryCommit, RepositoryCommitPayload{
			RepositoryURL: "https://example.org/acme",
			CommitHash:    strings.Repeat("a", 40),
		}, "repository_url"},
		{"short commit", entities.ProofMethodRepositoryCommit, RepositoryCommitPayload{
			RepositoryURL: "https://gitlab.com/acme",
			CommitHash:    strings.Repeat("a", 39),
		}, "commit_hash"},
		{"non hex commit", entities.ProofMethodRepositoryCommit, RepositoryCommitPayload{
			RepositoryURL: "https://bitbucket.org/acme",
			CommitHash:    strings.Repeat("g", 40),
		}, "commit_hash"},
		{"custom empty", entities.ProofMethodCustom, CustomPayload{Fields: map[string]any{"note": "  "}}, "payload"},
		{"method mismatch", entities.ProofMethodMedia, ExternalActivityPayload{ActivityID: "x"}, "method"},
		{"missing payload", entities.ProofMethodMedia, nil, "payload"},
		{"unknown method", entities.ProofMethod("telepathy"), MediaPayload{}, "method"},
	}
	for _, tc := range cases {
		err := Validate(tc.method, tc.payload)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if field := apperrors.FieldOf(err); field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, field)
		}
	}
}

func TestDecodePayloadSelectsVariant(t *testing.T) {
	payload, err := DecodePayload(entities.ProofMethodGeolocation, []byte(`{"latitude":52.1,"longitude":4.3}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	geo, ok := payload.(GeolocationPayload)
	if !ok {
		t.Fatalf("expected geolocation payload, got %T", payload)
	}
	if *geo.Latitude != 52.1 || *geo.Longitude != 4.3 {
		t.Fatalf("unexpected coordinates %v %v", *geo.Latitude, *geo.Longitude)
	}

	custom, err := DecodePayload(entities.ProofMethodCustom, []byte(`{"note":"done"}`))
	if err != nil {
		t.Fatalf("decode custom failed: %v", err)
	}
	encoded, err := Encode(custom)
	if err != nil {
		t.Fatalf("encode custom failed: %v", err)
	}
	if string(encoded) != `{"note":"done"}` {
		t.Fatalf("custom payload must encode as its fields, got %s", encoded)
	}

	if _, err := DecodePayload(entities.ProofMethodMedia, []byte(`[1,2]`)); apperrors.FieldOf(err) != "payload" {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
	if _, err := DecodePayload(entities.ProofMethodMedia, nil); apperrors.FieldOf(err) != "payload" {
		t.Fatalf("expected missing payload error, got %v", err)
	}
}

func TestSanitizeTextOnlyTouchesCustomStrings(t *testing.T) {
	upper := func(s string) string { return strings.ToUpper(s) }
	cleaned := SanitizeText(CustomPayload{Fields: map[string]any{"note": "done", "km": 5}}, upper).(CustomPayload)
	if cleaned.Fields["note"] != "DONE" || cleaned.Fields["km"] != 5 {
		t.Fatalf("unexpected sanitized fields %#v", cleaned.Fields)
	}
	media := MediaPayload{ContentURI: "u", ContentHash: "h"}
	if SanitizeText(media, upper) != Payload(media) {
		t.Fatalf("non-custom payloads must be returned unchanged")
	}
}
