// Package api holds the wire shapes of the vendor endpoints the engine
// depends on. Only the fields the core reads are modeled.
package api

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ErrorEntry struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// QueryResponse is the shared shape of the id-listing ("queries") endpoints.
type QueryResponse struct {
	Meta      Meta         `json:"meta"`
	Errors    []ErrorEntry `json:"errors,omitempty"`
	Resources []string     `json:"resources"`
}

type AccountMetadata struct {
	IAMRoleARN string `json:"iam_role_arn"`
	ExternalID string `json:"external_id"`
}

type CloudAccount struct {
	AccountID        string          `json:"account_id"`
	AccountName      string          `json:"account_name"`
	ResourceMetadata AccountMetadata `json:"resource_metadata"`
}

type CloudAccountsResponse struct {
	Meta      Meta           `json:"meta"`
	Errors    []ErrorEntry   `json:"errors,omitempty"`
	Resources []CloudAccount `json:"resources"`
}

type AssetResource struct {
	ResourceID   string `json:"resource_id"`
	ResourceType string `json:"resource_type"`
	AccountID    string `json:"account_id"`
	Region       string `json:"region"`
}

type AssetsResponse struct {
	Meta      Meta            `json:"meta"`
	Errors    []ErrorEntry    `json:"errors,omitempty"`
	Resources []AssetResource `json:"resources"`
}
