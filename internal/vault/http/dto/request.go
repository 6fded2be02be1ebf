// Package dto provides data transfer objects for the vault's HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/keyvault/internal/validation"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

const (
	maxServiceNameLength = 128
	maxDescriptionLength = 1024
	maxSecretLength      = 8192
	maxAllowedContracts  = 256
)

// CreateKeyRequest contains the parameters for storing a new API key.
// SECURITY: APIKey is plaintext and must never be logged.
type CreateKeyRequest struct {
	ServiceName      string   `json:"service_name"`
	APIKey           string   `json:"api_key"`
	Description      string   `json:"description"`
	AllowedContracts []string `json:"allowed_contracts"`
	// RateLimit falls back to the configured default when omitted.
	RateLimit *int `json:"rate_limit"`
}

// Validate checks if the create key request is valid.
func (r *CreateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ServiceName,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Printable,
			validation.RuneLength(1, maxServiceNameLength),
		),
		validation.Field(&r.APIKey,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, maxSecretLength),
		),
		validation.Field(&r.Description, validation.RuneLength(0, maxDescriptionLength)),
		validation.Field(&r.AllowedContracts,
			validation.Length(0, maxAllowedContracts),
			validation.Each(customValidation.CallerIdentity),
		),
		validation.Field(&r.RateLimit, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

// ToDomain converts the request into a CreateKeyInput, applying defaultRateLimit when the request
// omits one.
func (r *CreateKeyRequest) ToDomain(defaultRateLimit int) *vaultDomain.CreateKeyInput {
	rateLimit := defaultRateLimit
	if r.RateLimit != nil {
		rateLimit = *r.RateLimit
	}
	return &vaultDomain.CreateKeyInput{
		ServiceName:    r.ServiceName,
		Secret:         []byte(r.APIKey),
		Description:    r.Description,
		AllowedCallers: vaultDomain.NormalizeCallers(r.AllowedContracts),
		RateLimit:      rateLimit,
	}
}

// UpdateKeyRequest contains optional changes to a stored key. Omitted fields are left untouched;
// an empty allowed_contracts list removes the restriction.
type UpdateKeyRequest struct {
	APIKey           *string   `json:"api_key"`
	Description      *string   `json:"description"`
	AllowedContracts *[]string `json:"allowed_contracts"`
	RateLimit        *int      `json:"rate_limit"`
	Active           *bool     `json:"active"`
}

// Validate checks if the update key request is valid.
func (r *UpdateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.APIKey,
			validation.NilOrNotEmpty,
			customValidation.NotBlank,
			validation.Length(1, maxSecretLength),
		),
		validation.Field(&r.Description, validation.RuneLength(0, maxDescriptionLength)),
		validation.Field(&r.AllowedContracts, validation.By(func(value interface{}) error {
			callers, _ := value.(*[]string)
			if callers == nil {
				return nil
			}
			return validation.Validate(*callers,
				validation.Length(0, maxAllowedContracts),
				validation.Each(customValidation.CallerIdentity),
			)
		})),
		validation.Field(&r.RateLimit, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

// ToDomain converts the request into an UpdateKeyInput.
func (r *UpdateKeyRequest) ToDomain() *vaultDomain.UpdateKeyInput {
	input := &vaultDomain.UpdateKeyInput{
		Description: r.Description,
		RateLimit:   r.RateLimit,
		Active:      r.Active,
	}
	if r.APIKey != nil {
		input.Secret = []byte(*r.APIKey)
	}
	if r.AllowedContracts != nil {
		callers := vaultDomain.NormalizeCallers(*r.AllowedContracts)
		input.AllowedCallers = &callers
	}
	return input
}

// RotateKeyRequest carries the replacement secret. It may also be sent as the new_api_key query
// parameter.
type RotateKeyRequest struct {
	NewAPIKey string `json:"new_api_key"`
}

// Validate checks if the rotate key request is valid.
func (r *RotateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.NewAPIKey,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, maxSecretLength),
		),
	)
}

// GetKeyRequest is the body of a release request. ContractAddress is optional; when present it
// must equal the authenticated caller identity.
type GetKeyRequest struct {
	ContractAddress string `json:"contract_address"`
	ServiceName     string `json:"service_name"`
}

// Validate checks if the get key request is valid.
func (r *GetKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ServiceName,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, maxServiceNameLength),
		),
		validation.Field(&r.ContractAddress, customValidation.NoWhitespace),
	)
}
