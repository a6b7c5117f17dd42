package api

type RegistryEntity struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	URL              string `json:"url"`
	UserDefinedAlias string `json:"user_defined_alias,omitempty"`
	State            string `json:"state,omitempty"`
	LastActivity     string `json:"last_activity,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

type RegistriesResponse struct {
	Meta      Meta             `json:"meta"`
	Errors    []ErrorEntry     `json:"errors,omitempty"`
	Resources []RegistryEntity `json:"resources"`
}

type RegistryCredentialDetails struct {
	AWSIAMRole    string `json:"aws_iam_role"`
	AWSExternalID string `json:"aws_external_id"`
}

type RegistryCredential struct {
	Details RegistryCredentialDetails `json:"details"`
}

type CreateRegistryRequest struct {
	Type             string             `json:"type"`
	URL              string             `json:"url"`
	UserDefinedAlias string             `json:"user_defined_alias,omitempty"`
	Credential       RegistryCredential `json:"credential"`
}
