package models

import (
	"maps"
	"slices"
)

// DomainHintParam is the extra query parameter stripped from silent renewal requests
const DomainHintParam = "domain_hint"

// AuthenticationParameters are the per-request inputs of a login or token call
type AuthenticationParameters struct {
	Scopes               []string          `json:"scopes" yaml:"scopes"`
	LoginHint            string            `json:"login_hint,omitempty" yaml:"login_hint"`
	RedirectURI          string            `json:"redirect_uri,omitempty" yaml:"redirect_uri"`
	Prompt               string            `json:"prompt,omitempty" yaml:"prompt"`
	ExtraQueryParameters map[string]string `json:"extra_query_parameters,omitempty" yaml:"extra_query_parameters"`
}

// Clone returns a copy whose scopes and extra parameters can be changed freely
func (p AuthenticationParameters) Clone() AuthenticationParameters {
	c := p
	c.Scopes = slices.Clone(p.Scopes)
	c.ExtraQueryParameters = maps.Clone(p.ExtraQueryParameters)
	return c
}

// WithoutDomainHint returns a copy with the domain_hint extra parameter removed
func (p AuthenticationParameters) WithoutDomainHint() AuthenticationParameters {
	c := p.Clone()
	if _, ok := c.ExtraQueryParameters[DomainHintParam]; ok {
		delete(c.ExtraQueryParameters, DomainHintParam)
	}
	return c
}

// ProviderOptions configure how the provider interacts with the user
type ProviderOptions struct {
	LoginType       LoginType `json:"login_type" yaml:"login_type"`
	TokenRefreshURI string    `json:"token_refresh_uri" yaml:"token_refresh_uri"`
}

// ClientConfiguration is the identity client's effective configuration
type ClientConfiguration struct {
	ClientID    string
	Authority   string
	RedirectURI string
}
