package proofs

import (
	"strings"

	"wishpact/contexts/wish-verification/verification-service/domain/entities"
	"wishpact/contracts/apperrors"
)

const commitHashLength = 40

var repositoryHosts = []string{"github.com", "gitlab.com", "bitbucket.org"}

// Validate checks payload against the wish's declared proof method. It has no
// side effects; callers must not persist a proof when it returns an error.
func Validate(method entities.ProofMethod, payload Payload) error {
	if !method.Valid() {
		return apperrors.Invalid("method", "unsupported proof method")
	}
	if payload == nil {
		return apperrors.Invalid("payload", "is required")
	}
	if payload.Method() != method {
		return apperrors.Invalid("method", "payload does not match the wish proof method "+string(method))
	}
	return payload.validate()
}

func (p MediaPayload) validate() error {
	if strings.TrimSpace(p.ContentURI) == "" {
		return apperrors.Invalid("content_uri", "is required")
	}
	if strings.TrimSpace(p.ContentHash) == "" {
		return apperrors.Invalid("content_hash", "is required")
	}
	return nil
}

func (p GeolocationPayload) validate() error {
	if p.Latitude == nil {
		return apperrors.Invalid("latitude", "is required")
	}
	if p.Longitude == nil {
		return apperrors.Invalid("longitude", "is required")
	}
	if *p.Latitude < -90 || *p.Latitude > 90 {
		return apperrors.Invalid("latitude", "must be within [-90, 90]")
	}
	if *p.Longitude < -180 || *p.Longitude > 180 {
		return apperrors.Invalid("longitude", "must be within [-180, 180]")
	}
	return nil
}

func (p ExternalActivityPayload) validate() error {
	if strings.TrimSpace(p.ActivityID) == "" {
		return apperrors.Invalid("activity_id", "is required")
	}
	return nil
}

func (p RepositoryCommitPayload) validate() error {
	url := strings.ToLower(strings.TrimSpace(p.RepositoryURL))
	if url == "" {
		return apperrors.Invalid("repository_url", "is required")
	}
	recognized := false
	for _, host := range repositoryHosts {
		if strings.Contains(url, host) {
			recognized = true
			break
		}
	}
	if !recognized {
		return apperrors.Invalid("repository_url", "must point to a recognized repository host")
	}
	if !isHex(p.CommitHash, commitHashLength) {
		return apperrors.Invalid("commit_hash", "must be 40 hex characters")
	}
	return nil
}

func (p CustomPayload) validate() error {
	for _, value := range p.Fields {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) != "" {
				return nil
			}
		default:
			return nil
		}
	}
	return apperrors.Invalid("payload", "custom proof must carry at least one non-empty field")
}

func isHex(value string, length int) bool {
	if len(value) != length {
		return false
	}
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
